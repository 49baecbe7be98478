package dockstream_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sujumayas/dockstream"
)

func TestDefaultTheme(t *testing.T) {
	t.Parallel()
	theme := dockstream.DefaultTheme()
	assert.Equal(t, -1, theme.Assistant, "assistant text uses the terminal default")
	for _, idx := range []int{theme.UserMsg, theme.Error, theme.Success, theme.Muted, theme.Accent} {
		assert.GreaterOrEqual(t, idx, 0)
		assert.LessOrEqual(t, idx, 15)
	}
}
