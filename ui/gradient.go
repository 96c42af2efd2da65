package ui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// lerpByte interpolates a single color channel between a and b.
func lerpByte(a, b byte, t float64) byte {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return byte(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

// parseHex reads a "#rrggbb" string into its channel bytes. Invalid
// input falls back to white so a bad constant is visible, not fatal.
func parseHex(s string) (byte, byte, byte) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 0xff, 0xff, 0xff
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0xff, 0xff, 0xff
	}
	return byte(v >> 16), byte(v >> 8), byte(v)
}

// lerpHex blends two hex colors at position t in [0,1].
func lerpHex(start, end string, t float64) string {
	r1, g1, b1 := parseHex(start)
	r2, g2, b2 := parseHex(end)
	return fmt.Sprintf("#%02x%02x%02x", lerpByte(r1, r2, t), lerpByte(g1, g2, t), lerpByte(b1, b2, t))
}

// GradientText colors the runes of s left to right from start to end.
// Multi-line input is shaded per line so block art keeps its columns
// aligned. Spaces are passed through unstyled.
func GradientText(s, start, end string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		runes := []rune(line)
		n := len(runes)
		if n == 0 {
			continue
		}
		var sb strings.Builder
		for j, r := range runes {
			if r == ' ' {
				sb.WriteRune(r)
				continue
			}
			t := 0.0
			if n > 1 {
				t = float64(j) / float64(n-1)
			}
			fg := lipgloss.Color(lerpHex(start, end, t))
			sb.WriteString(lipgloss.NewStyle().Foreground(fg).Render(string(r)))
		}
		lines[i] = sb.String()
	}
	return strings.Join(lines, "\n")
}
