package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// The base TALLY banner, 6 rows tall.
var fallbackBannerRaw = `████████╗ █████╗ ██╗     ██╗     ██╗   ██╗
╚══██╔══╝██╔══██╗██║     ██║     ╚██╗ ██╔╝
   ██║   ███████║██║     ██║      ╚████╔╝
   ██║   ██╔══██║██║     ██║       ╚██╔╝
   ██║   ██║  ██║███████╗███████╗   ██║
   ╚═╝   ╚═╝  ╚═╝╚══════╝╚══════╝   ╚═╝   `

// Block-art glyphs, each 6 rows to match the banner height.
// period: small block sitting at the bottom.
var blockPeriod = [6]string{
	"   ",
	"   ",
	"   ",
	"   ",
	"██╗",
	"╚═╝",
}

// bannerFrames are precomputed gradient-rendered banner strings. The
// animation cycles from the bare word through one, two and three trailing
// dots, then wraps.
var bannerFrames = func() []string {
	base := strings.Split(fallbackBannerRaw, "\n")

	type glyph = [6]string
	suffixes := [][]glyph{
		{},                                      // TALLY
		{blockPeriod},                           // TALLY.
		{blockPeriod, blockPeriod},              // TALLY..
		{blockPeriod, blockPeriod, blockPeriod}, // TALLY...
	}

	frames := make([]string, len(suffixes))
	for i, glyphs := range suffixes {
		lines := make([]string, 6)
		copy(lines, base)
		for _, g := range glyphs {
			for row := 0; row < 6; row++ {
				lines[row] += " " + g[row]
			}
		}
		frames[i] = GradientText(strings.Join(lines, "\n"), GradientStart, GradientEnd)
	}
	return frames
}()

// bannerWidth is the cell width of the widest frame, used to decide whether
// a pane is wide enough to show the banner at all.
var bannerWidth = lipgloss.Width(bannerFrames[len(bannerFrames)-1])

// FallBackText returns the precomputed banner frame for the given tick.
func FallBackText(frame int) string {
	return bannerFrames[frame%len(bannerFrames)]
}

// BannerLines returns the pre-rendered gradient banner as individual lines
// for the given animation frame. Always returns exactly 6 lines.
func BannerLines(frame int) []string {
	banner := bannerFrames[frame%len(bannerFrames)]
	return strings.Split(banner, "\n")
}
