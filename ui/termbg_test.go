package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetTerminalBackground(t *testing.T) {
	t.Run("emits OSC 11 with the color and OSC 111 on restore", func(t *testing.T) {
		var buf bytes.Buffer
		restore := setTermBg(&buf, "#232136")
		assert.Equal(t, "\033]11;#232136\033\\", buf.String())

		buf.Reset()
		restore()
		assert.Equal(t, "\033]111\033\\", buf.String())
	})

	t.Run("empty color writes nothing", func(t *testing.T) {
		var buf bytes.Buffer
		restore := setTermBg(&buf, "")
		assert.Zero(t, buf.Len())
		restore()
		assert.Zero(t, buf.Len())
	})
}
