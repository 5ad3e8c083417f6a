package binding

import (
	"fmt"
	"strings"
)

// Modifier is a bit set of held modifier keys.
type Modifier uint8

const (
	ModAlt Modifier = 1 << iota
	ModControl
	ModShift
	ModWin
)

var modifierOrder = []struct {
	mod  Modifier
	name string
}{
	{ModAlt, "Alt"},
	{ModControl, "Control"},
	{ModShift, "Shift"},
	{ModWin, "Win"},
}

var modifierAliases = map[string]Modifier{
	"alt":     ModAlt,
	"control": ModControl,
	"ctrl":    ModControl,
	"shift":   ModShift,
	"win":     ModWin,
	"super":   ModWin,
	"lwin":    ModWin,
}

// Chord is a key press with modifiers, written as "Alt+Shift+H".
type Chord struct {
	Mods Modifier
	Key  string
}

var namedKeys = map[string]string{
	"enter":     "Enter",
	"return":    "Enter",
	"space":     "Space",
	"tab":       "Tab",
	"escape":    "Escape",
	"esc":       "Escape",
	"backspace": "Backspace",
	"delete":    "Delete",
	"left":      "Left",
	"right":     "Right",
	"up":        "Up",
	"down":      "Down",
	"plus":      "Plus",
	"minus":     "Minus",
	"home":      "Home",
	"end":       "End",
}

// ParseChord parses "Mod+Mod+Key". Modifiers are case-insensitive; single
// letter keys are normalised to upper case.
func ParseChord(s string) (Chord, error) {
	parts := strings.Split(strings.TrimSpace(s), "+")
	if len(parts) == 0 || strings.TrimSpace(parts[len(parts)-1]) == "" {
		return Chord{}, fmt.Errorf("invalid key %q: missing key", s)
	}

	var c Chord
	for _, p := range parts[:len(parts)-1] {
		mod, ok := modifierAliases[strings.ToLower(strings.TrimSpace(p))]
		if !ok {
			return Chord{}, fmt.Errorf("invalid key %q: unknown modifier %q", s, p)
		}
		c.Mods |= mod
	}

	key, err := normaliseKey(strings.TrimSpace(parts[len(parts)-1]))
	if err != nil {
		return Chord{}, fmt.Errorf("invalid key %q: %w", s, err)
	}
	c.Key = key
	return c, nil
}

func normaliseKey(k string) (string, error) {
	if len(k) == 1 {
		ch := k[0]
		switch {
		case ch >= 'a' && ch <= 'z':
			return strings.ToUpper(k), nil
		case ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
			return k, nil
		}
		return "", fmt.Errorf("unsupported key %q", k)
	}
	lower := strings.ToLower(k)
	if name, ok := namedKeys[lower]; ok {
		return name, nil
	}
	if lower[0] == 'f' {
		var n int
		if _, err := fmt.Sscanf(lower, "f%d", &n); err == nil && n >= 1 && n <= 24 && fmt.Sprintf("f%d", n) == lower {
			return fmt.Sprintf("F%d", n), nil
		}
	}
	return "", fmt.Errorf("unsupported key %q", k)
}

// Has reports whether m is held.
func (c Chord) Has(m Modifier) bool { return c.Mods&m != 0 }

func (c Chord) String() string {
	var b strings.Builder
	for _, m := range modifierOrder {
		if c.Has(m.mod) {
			b.WriteString(m.name)
			b.WriteByte('+')
		}
	}
	b.WriteString(c.Key)
	return b.String()
}
