package bar

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/wintile/internal/platform"
)

type fakeState struct {
	mu      sync.Mutex
	work    bool
	ids     []int32
	active  int32
	title   string
	changed []int32
}

func (s *fakeState) WorkModeEnabled() bool { return s.work }

func (s *fakeState) Workspaces() ([]int32, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ids, s.active
}

func (s *fakeState) ChangeWorkspace(id int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changed = append(s.changed, id)
	s.active = id
}

func (s *fakeState) ActiveWindowTitle() string { return s.title }

func fixedClock() time.Time { return time.Date(2024, time.March, 15, 9, 7, 3, 0, time.UTC) }

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestDefaultComponent(t *testing.T) {
	c := Default()
	assert.Equal(t, "Default", c.Name)
	assert.False(t, c.Clickable())
	assert.Equal(t, []Text{Basic("Hello World")}, c.Render(platform.Display{}))
	assert.Equal(t, "Component(name: Default, clickable: false)", c.String())

	// Clicking a component without a handler does nothing.
	c.Click(platform.Display{}, 0)
}

func TestWithOnClickMakesClickable(t *testing.T) {
	var got []int
	c := New("Counter", func(*Component, platform.Display) []Text { return nil }).
		WithOnClick(func(_ *Component, _ platform.Display, idx int) { got = append(got, idx) })

	require.True(t, c.Clickable())
	c.Click(platform.Display{}, 2)
	c.Click(platform.Display{}, 0)
	assert.Equal(t, []int{2, 0}, got)
}

func TestRenderReceivesDisplay(t *testing.T) {
	c := New("Width", func(_ *Component, d platform.Display) []Text {
		return []Text{Basic(d.Name)}
	})
	assert.Equal(t, "DISPLAY1", c.Render(platform.Display{Name: "DISPLAY1"})[0].Value)
}

func TestDateAndTime(t *testing.T) {
	assert.Equal(t, "15 Mar 2024", Date("%e %b %Y", fixedClock).Render(platform.Display{})[0].Value)
	assert.Equal(t, "09:07:03", Time("%T", fixedClock).Render(platform.Display{})[0].Value)
}

func TestActiveModeAndPadding(t *testing.T) {
	s := &fakeState{}
	assert.Equal(t, "normal", ActiveMode(s).Render(platform.Display{})[0].Value)
	s.work = true
	assert.Equal(t, "work", ActiveMode(s).Render(platform.Display{})[0].Value)
	assert.Equal(t, "   ", Padding(3).Render(platform.Display{})[0].Value)
}

func TestWorkspacesHighlightAndClick(t *testing.T) {
	s := &fakeState{ids: []int32{1, 2, 3}, active: 2}
	c := Workspaces(s, 0x00ff00)

	texts := c.Render(platform.Display{})
	require.Len(t, texts, 3)
	assert.Nil(t, texts[0].BG)
	require.NotNil(t, texts[1].BG)
	assert.Equal(t, uint32(0x00ff00), *texts[1].BG)
	assert.Equal(t, " 2 ", texts[1].Value)

	require.True(t, c.Clickable())
	c.Click(platform.Display{}, 2)
	c.Click(platform.Display{}, 7)
	assert.Equal(t, []int32{3}, s.changed)
}

func TestRunnerCreateClose(t *testing.T) {
	s := &fakeState{ids: []int32{1}, active: 1, title: "editor"}
	r := NewRunner(RunnerConfig{
		Layout:   DefaultLayout(s, "%e %b %Y", "%T", 0x808080, fixedClock),
		Display:  func() (platform.Display, error) { return platform.Display{Name: "primary"}, nil },
		Interval: 5 * time.Millisecond,
		Logger:   quietLogger(),
		Clock:    fixedClock,
	})

	require.False(t, r.Open())
	require.NoError(t, r.Create())
	require.NoError(t, r.Create())
	assert.True(t, r.Open())

	snap := r.Snapshot()
	require.Len(t, snap.Center, 1)
	assert.Equal(t, "CurrentWindow", snap.Center[0].Component)
	assert.Equal(t, "editor", snap.Center[0].Texts[0].Value)
	assert.True(t, snap.Left[1].Clickable)
	assert.Equal(t, fixedClock(), snap.RenderedAt)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.False(t, r.Open())
}

func TestRunnerCreateFailsWithoutDisplay(t *testing.T) {
	r := NewRunner(RunnerConfig{
		Display: func() (platform.Display, error) { return platform.Display{}, platform.ErrUnsupported },
		Logger:  quietLogger(),
	})
	err := r.Create()
	require.ErrorIs(t, err, platform.ErrUnsupported)
	assert.False(t, r.Open())
}

func TestRunnerClick(t *testing.T) {
	s := &fakeState{ids: []int32{1, 2}, active: 1}
	r := NewRunner(RunnerConfig{Layout: DefaultLayout(s, "%T", "%T", 0, fixedClock), Logger: quietLogger()})

	require.NoError(t, r.Click("Workspaces", 1))
	assert.Equal(t, []int32{2}, s.changed)

	assert.Error(t, r.Click("CurrentWindow", 0))
	assert.Error(t, r.Click("Missing", 0))
}

func TestPreviewFillsWidth(t *testing.T) {
	s := &fakeState{ids: []int32{1, 2}, active: 1, title: "notes"}
	r := NewRunner(RunnerConfig{Layout: DefaultLayout(s, "%e %b %Y", "%T", 0x404040, fixedClock), Logger: quietLogger()})
	snap := r.Snapshot()

	out := Preview(snap, Theme{Background: 0x40342e}, 80)
	assert.Equal(t, 80, lipgloss.Width(out))
	assert.Contains(t, PlainText(snap), "notes")
	assert.Contains(t, PlainText(snap), "15 Mar 2024")
}

func TestHexIsRGBOrder(t *testing.T) {
	assert.Equal(t, lipgloss.Color("#2e3440"), hex(0x40342e))
}

func TestHighlight(t *testing.T) {
	bg := uint32(0x40342e)
	dark := Highlight(bg, false)
	light := Highlight(bg, true)
	assert.NotEqual(t, bg, dark)
	assert.NotEqual(t, dark, light)
	// Towards white raises every channel of a dark background.
	assert.Greater(t, dark&0xff, bg&0xff)
	assert.Equal(t, uint32(0xffffff), Highlight(0xffffff, false))
}
