package bar

import (
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/strftime"

	"github.com/1broseidon/wintile/internal/platform"
)

// State is what the built-in components read from the running manager.
type State interface {
	WorkModeEnabled() bool
	Workspaces() (ids []int32, active int32)
	ChangeWorkspace(id int32)
	ActiveWindowTitle() string
}

// Clock returns the current time.
type Clock func() time.Time

// Padding renders n spaces.
func Padding(n int) *Component {
	return New("Padding", func(*Component, platform.Display) []Text {
		return []Text{Basic(strings.Repeat(" ", n))}
	})
}

func formatted(name, pattern string, now Clock) *Component {
	f, err := strftime.New(pattern)
	return New(name, func(*Component, platform.Display) []Text {
		if err != nil {
			return []Text{Basic(fmt.Sprintf("invalid pattern %q", pattern))}
		}
		return []Text{Basic(f.FormatString(now()))}
	})
}

// Date renders the date with a strftime pattern such as "%e %b %Y".
func Date(pattern string, now Clock) *Component { return formatted("Date", pattern, now) }

// Time renders the time with a strftime pattern such as "%T".
func Time(pattern string, now Clock) *Component { return formatted("Time", pattern, now) }

// ActiveMode shows whether work mode is on.
func ActiveMode(s State) *Component {
	return New("ActiveMode", func(*Component, platform.Display) []Text {
		if s.WorkModeEnabled() {
			return []Text{Basic("work")}
		}
		return []Text{Basic("normal")}
	})
}

// Workspaces renders one segment per workspace, highlighting the active one.
// Clicking a segment switches to that workspace.
func Workspaces(s State, highlight uint32) *Component {
	c := New("Workspaces", func(*Component, platform.Display) []Text {
		ids, active := s.Workspaces()
		out := make([]Text, 0, len(ids))
		for _, id := range ids {
			label := fmt.Sprintf(" %d ", id)
			if id == active {
				out = append(out, Colored(nil, Color(highlight), label))
			} else {
				out = append(out, Basic(label))
			}
		}
		return out
	})
	return c.WithOnClick(func(_ *Component, _ platform.Display, idx int) {
		ids, _ := s.Workspaces()
		if idx >= 0 && idx < len(ids) {
			s.ChangeWorkspace(ids[idx])
		}
	})
}

// CurrentWindow renders the title of the focused window.
func CurrentWindow(s State) *Component {
	return New("CurrentWindow", func(*Component, platform.Display) []Text {
		return []Text{Basic(s.ActiveWindowTitle())}
	})
}
