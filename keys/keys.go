package keys

import (
	"github.com/charmbracelet/bubbles/key"
)

type KeyName int

const (
	KeyUp KeyName = iota
	KeyDown
	KeyEnter
	KeyQuit
	KeyHelp

	KeyTab // Tab switches between the timeline and movements views.

	KeyPrevPage
	KeyNextPage
	KeyLimit // cycle the page size through the selectable limits

	KeySpace // expand/collapse the selected cluster, reveal hidden members

	KeyJump   // go to a group by identifier
	KeyFilter // open the filter form
	KeySearch // quick asset filter
	KeyClearFilters
	KeySort    // flip sort direction
	KeyIgnored // toggle ignored-event visibility

	KeyYank    // copy the selected event's tx hash or identifier
	KeyRefresh // force a refetch of the current page
	KeyBack    // pop the route history

	KeyMatch // match the selected movement (movements view)

	KeySubmit // Submit is a special keybinding for confirming overlay input.
)

// GlobalKeyStringsMap is a global, immutable map string to keybinding.
var GlobalKeyStringsMap = map[string]KeyName{
	"up":        KeyUp,
	"k":         KeyUp,
	"down":      KeyDown,
	"j":         KeyDown,
	"enter":     KeyEnter,
	"o":         KeyEnter,
	"q":         KeyQuit,
	"?":         KeyHelp,
	"tab":       KeyTab,
	"left":      KeyPrevPage,
	"h":         KeyPrevPage,
	"right":     KeyNextPage,
	"l":         KeyNextPage,
	"L":         KeyLimit,
	" ":         KeySpace,
	"g":         KeyJump,
	"f":         KeyFilter,
	"/":         KeySearch,
	"x":         KeyClearFilters,
	"s":         KeySort,
	"i":         KeyIgnored,
	"y":         KeyYank,
	"r":         KeyRefresh,
	"backspace": KeyBack,
	"m":         KeyMatch,
}

// GlobalkeyBindings is a global, immutable map of KeyName to keybinding.
var GlobalkeyBindings = map[KeyName]key.Binding{
	KeyUp: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	KeyDown: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	KeyEnter: key.NewBinding(
		key.WithKeys("enter", "o"),
		key.WithHelp("↵/o", "open"),
	),
	KeyQuit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	KeyHelp: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	KeyTab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch view"),
	),
	KeyPrevPage: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "prev page"),
	),
	KeyNextPage: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "next page"),
	),
	KeyLimit: key.NewBinding(
		key.WithKeys("L"),
		key.WithHelp("L", "page size"),
	),
	KeySpace: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "expand/collapse"),
	),
	KeyJump: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "go to group"),
	),
	KeyFilter: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "filter"),
	),
	KeySearch: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "asset"),
	),
	KeyClearFilters: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "clear filters"),
	),
	KeySort: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "sort"),
	),
	KeyIgnored: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "ignored"),
	),
	KeyYank: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy hash"),
	),
	KeyRefresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	KeyBack: key.NewBinding(
		key.WithKeys("backspace"),
		key.WithHelp("⌫", "back"),
	),
	KeyMatch: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "match"),
	),

	// -- Special keybindings --

	KeySubmit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "submit"),
	),
}
