package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tallyview/tally/keys"
)

var keyStyle = lipgloss.NewStyle().Foreground(ColorSubtle)

var descStyle = lipgloss.NewStyle().Foreground(ColorMuted)

var sepStyle = lipgloss.NewStyle().Foreground(ColorOverlay)

var actionGroupStyle = lipgloss.NewStyle().Foreground(ColorRose)

var unmatchedCountStyle = lipgloss.NewStyle().Foreground(ColorGold)

var separator = " • "
var verticalSeparator = " │ "

var menuStyle = lipgloss.NewStyle().
	Foreground(ColorFoam)

// MenuState represents different states the menu can be in
type MenuState int

const (
	StateTimeline MenuState = iota
	StateMovements
	StateEmpty
	StateInput
	StateConfirm
)

type Menu struct {
	options       []keys.KeyName
	height, width int
	state         MenuState

	// spaceAction is the help label for KeySpace, tracking whether the
	// selected row expands or collapses.
	spaceAction string

	// unmatchedCount is shown right-aligned when movements await a match.
	unmatchedCount int

	// keyDown is the key which is pressed. The default is -1.
	keyDown keys.KeyName

	// firstGroupSize and systemGroupSize drive separator placement: options
	// split into first │ action │ system groups. firstGroupSize 0 renders
	// one flat group.
	firstGroupSize  int
	systemGroupSize int
}

var timelineMenuOptions = []keys.KeyName{keys.KeyJump, keys.KeyFilter, keys.KeyEnter, keys.KeySpace, keys.KeySort, keys.KeyTab, keys.KeyHelp, keys.KeyQuit}
var movementsMenuOptions = []keys.KeyName{keys.KeyRefresh, keys.KeyEnter, keys.KeyMatch, keys.KeyTab, keys.KeyHelp, keys.KeyQuit}
var emptyMenuOptions = []keys.KeyName{keys.KeyFilter, keys.KeyClearFilters, keys.KeyRefresh, keys.KeyHelp, keys.KeyQuit}
var inputMenuOptions = []keys.KeyName{keys.KeySubmit}

func NewMenu() *Menu {
	return &Menu{
		options:     emptyMenuOptions,
		state:       StateEmpty,
		keyDown:     -1,
		spaceAction: "expand/collapse",
	}
}

func (m *Menu) Keydown(name keys.KeyName) {
	m.keyDown = name
}

func (m *Menu) ClearKeydown() {
	m.keyDown = -1
}

// SetState updates the menu state and options accordingly
func (m *Menu) SetState(state MenuState) {
	m.state = state
	m.updateOptions()
}

// SetSpaceAction sets the context-sensitive space-key label.
func (m *Menu) SetSpaceAction(action string) {
	switch action {
	case "expand", "collapse":
		m.spaceAction = action
	default:
		m.spaceAction = "expand/collapse"
	}
}

// SetUnmatchedCount sets the number of movements awaiting a match.
func (m *Menu) SetUnmatchedCount(n int) {
	m.unmatchedCount = n
}

// updateOptions updates the menu options based on the current state
func (m *Menu) updateOptions() {
	switch m.state {
	case StateTimeline:
		m.options = timelineMenuOptions
		m.firstGroupSize = 2
		m.systemGroupSize = 3
	case StateMovements:
		m.options = movementsMenuOptions
		m.firstGroupSize = 1
		m.systemGroupSize = 3
	case StateEmpty:
		m.options = emptyMenuOptions
		m.firstGroupSize = 0
		m.systemGroupSize = len(emptyMenuOptions)
	case StateInput, StateConfirm:
		m.options = inputMenuOptions
		m.firstGroupSize = 0
		m.systemGroupSize = 0
	}
}

// SetSize sets the width of the window. The menu will be centered horizontally within this width.
func (m *Menu) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Menu) String() string {
	var s strings.Builder

	sysSize := m.systemGroupSize
	actionEnd := len(m.options) - sysSize

	// Options split into first │ action │ system groups; flat states render
	// one group with no vertical separators.
	var groups []struct {
		start int
		end   int
	}
	if m.firstGroupSize == 0 {
		groups = []struct {
			start int
			end   int
		}{
			{0, len(m.options)},
		}
	} else {
		groups = []struct {
			start int
			end   int
		}{
			{0, m.firstGroupSize},
			{m.firstGroupSize, actionEnd},
			{actionEnd, len(m.options)},
		}
	}

	for i, k := range m.options {
		binding := keys.GlobalkeyBindings[k]
		help := binding.Help()
		helpKey := help.Key
		helpDesc := help.Desc
		if k == keys.KeySpace {
			helpDesc = m.spaceAction
		}

		var (
			localActionStyle = actionGroupStyle
			localKeyStyle    = keyStyle
			localDescStyle   = descStyle
		)
		if m.keyDown == k {
			localActionStyle = localActionStyle.Underline(true)
			localKeyStyle = localKeyStyle.Underline(true)
			localDescStyle = localDescStyle.Underline(true)
		}

		var inActionGroup bool
		if m.firstGroupSize == 0 {
			inActionGroup = i < actionEnd
		} else {
			inActionGroup = i >= groups[1].start && i < groups[1].end
		}

		if inActionGroup {
			s.WriteString(localActionStyle.Render(helpKey + " " + helpDesc))
		} else {
			s.WriteString(localKeyStyle.Render(helpKey))
			s.WriteString(descStyle.Render(" "))
			s.WriteString(localDescStyle.Render(helpDesc))
		}

		// Add appropriate separator
		if i != len(m.options)-1 {
			isGroupEnd := false
			for _, group := range groups {
				if i == group.end-1 {
					s.WriteString(sepStyle.Render(verticalSeparator))
					isGroupEnd = true
					break
				}
			}
			if !isGroupEnd {
				s.WriteString(sepStyle.Render(separator))
			}
		}
	}

	menuText := menuStyle.Render(s.String())

	// Pending-movement counter sits at the right edge without disturbing
	// the centered menu.
	if m.unmatchedCount > 0 {
		label := unmatchedCountStyle.Render(fmt.Sprintf("unmatched:%d", m.unmatchedCount))
		menuW := lipgloss.Width(menuText)
		labelW := lipgloss.Width(label)
		leftPad := (m.width - menuW) / 2
		if leftPad < 0 {
			leftPad = 0
		}
		midPad := m.width - leftPad - menuW - labelW - 1
		if midPad >= 1 {
			line := strings.Repeat(" ", leftPad) + menuText + strings.Repeat(" ", midPad) + label + " "
			return lipgloss.Place(m.width, m.height, lipgloss.Left, lipgloss.Center, line)
		}
	}

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, menuText)
}
