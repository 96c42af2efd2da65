package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestBannerLines_ReturnsSixRows(t *testing.T) {
	for frame := 0; frame < 8; frame++ {
		assert.Len(t, BannerLines(frame), 6)
	}
}

func TestFallBackText_FrameWrapsAroundCycle(t *testing.T) {
	assert.Equal(t, FallBackText(0), FallBackText(4))
	assert.Equal(t, FallBackText(1), FallBackText(5))
}

func TestFallBackText_DotsWidenTheBanner(t *testing.T) {
	bare := lipgloss.Width(FallBackText(0))
	threeDots := lipgloss.Width(FallBackText(3))
	assert.Greater(t, threeDots, bare)
	assert.Equal(t, threeDots, bannerWidth)
}
