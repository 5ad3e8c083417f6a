package hotkeys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/wintile/internal/binding"
	"github.com/1broseidon/wintile/internal/platform"
	"github.com/1broseidon/wintile/internal/platform/platformtest"
)

func TestKeySequence(t *testing.T) {
	tests := map[string]string{
		"Alt+H":             "Mod1-h",
		"Alt+Shift+L":       "Mod1-Shift-l",
		"Win+Alt+T":         "Mod4-Mod1-t",
		"Control+Enter":     "Control-Return",
		"Alt+Plus":          "Mod1-plus",
		"Alt+Control+Space": "Mod1-Control-space",
		"Alt+1":             "Mod1-1",
		"Shift+F5":          "Shift-F5",
		"Alt+Backspace":     "Mod1-BackSpace",
	}
	for in, want := range tests {
		c, err := binding.ParseChord(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, KeySequence(c), in)
	}
}

func TestNewHandlerRequiresX11(t *testing.T) {
	_, err := NewHandler(platformtest.New(), func(binding.Action) {}, nil)
	assert.ErrorIs(t, err, platform.ErrUnsupported)
}
