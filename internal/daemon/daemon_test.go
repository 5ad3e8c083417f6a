package daemon

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/wintile/internal/binding"
	"github.com/1broseidon/wintile/internal/ipc"
	"github.com/1broseidon/wintile/internal/platform"
	"github.com/1broseidon/wintile/internal/platform/platformtest"
	"github.com/1broseidon/wintile/internal/style"
)

const testConfig = `
remove_title_bar: true
remove_task_bar: true
margin: 0
padding: 0
min_width: 200
min_height: 200
work_mode: false
workspaces:
  - id: 1
    monitor: 0
  - id: 2
    monitor: 0
rules:
  - pattern: "^Settings$"
    manage: false
  - glob: "*.scratch"
    workspace: 2
keybindings:
  - type: ToggleWorkMode
    key: Alt+Control+W
`

var originalRect = platform.Rect{Left: 100, Top: 100, Right: 900, Bottom: 700}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func addWindow(fake *platformtest.Fake, raw uintptr, title string, rect platform.Rect) platform.Handle {
	return fake.Add(raw, platformtest.Window{
		Style:   style.OverlappedWindow | style.Visible,
		ExStyle: style.WindowEdge,
		Rect:    rect,
		Title:   title,
		Path:    `C:\Program Files\App\app.exe`,
	})
}

type launches struct {
	mu   sync.Mutex
	cmds []string
}

func (l *launches) launch(cmd string) error {
	l.mu.Lock()
	l.cmds = append(l.cmds, cmd)
	l.mu.Unlock()
	return nil
}

func (l *launches) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.cmds...)
}

type testApp struct {
	*App
	fake     *platformtest.Fake
	launches *launches
	dir      string
}

func newTestApp(t *testing.T, script string) *testApp {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))
	if script != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "init.lua"), []byte(script), 0o644))
	}

	fake := platformtest.New()
	l := &launches{}
	a, err := New(Options{
		ConfigPath:   path,
		Backend:      fake,
		Logger:       quietLogger(),
		PollInterval: time.Hour,
		BarInterval:  time.Hour,
		Launch:       l.launch,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.workMode.Set(false) })
	return &testApp{App: a, fake: fake, launches: l, dir: dir}
}

type recordedEvents struct {
	opened []platform.Handle
	closed []platform.Handle
}

func (r *recordedEvents) Opened(h platform.Handle) error {
	r.opened = append(r.opened, h)
	return nil
}

func (r *recordedEvents) Closed(h platform.Handle) { r.closed = append(r.closed, h) }

func TestWatcherDiffsWindowList(t *testing.T) {
	fake := platformtest.New()
	a := addWindow(fake, 1, "a", originalRect)
	b := addWindow(fake, 2, "b", originalRect)

	events := &recordedEvents{}
	w := NewWatcher(WatcherConfig{Interval: time.Hour, Logger: quietLogger()}, fake.TopLevelWindows, events)

	require.NoError(t, w.Register())
	assert.True(t, w.Running())
	assert.Equal(t, []platform.Handle{a, b}, events.opened)

	fake.Remove(a)
	c := addWindow(fake, 3, "c", originalRect)
	w.ScanNow()
	assert.Equal(t, []platform.Handle{a}, events.closed)
	assert.Equal(t, []platform.Handle{a, b, c}, events.opened)

	w.ScanNow()
	assert.Len(t, events.opened, 3, "a second scan reports nothing new")

	require.NoError(t, w.Unregister())
	assert.False(t, w.Running())
}

func TestWatcherRegisterFailsWhenListingFails(t *testing.T) {
	fake := platformtest.New()
	fake.Fail("EnumWindows", 5)
	w := NewWatcher(WatcherConfig{Logger: quietLogger()}, fake.TopLevelWindows, &recordedEvents{})

	assert.Error(t, w.Register())
	assert.False(t, w.Running())
}

func TestWorkModeManagesExistingWindows(t *testing.T) {
	app := newTestApp(t, "")
	editor := addWindow(app.fake, 1, "main.go - editor", originalRect)
	settings := addWindow(app.fake, 2, "Settings", originalRect)
	tiny := addWindow(app.fake, 3, "tiny", platform.Rect{Right: 100, Bottom: 100})
	scratch := addWindow(app.fake, 4, "notes.scratch", originalRect)

	on, err := app.ToggleWorkMode()
	require.NoError(t, err)
	require.True(t, on)

	assert.True(t, app.registry.Contains(editor))
	assert.True(t, app.registry.Contains(scratch))
	assert.False(t, app.registry.Contains(settings), "excluded by rule")
	assert.False(t, app.registry.Contains(tiny), "below the minimum size")

	ed := app.fake.Get(editor)
	assert.False(t, ed.Style.Has(style.Caption), "title bar removed")
	assert.Equal(t, platform.Rect{Right: 1920, Bottom: 1080}, ed.Rect)

	sc := app.fake.Get(scratch)
	assert.False(t, sc.Style.Has(style.Visible), "windows of other workspaces are hidden")
	w, _ := app.registry.Get(scratch)
	assert.Equal(t, int32(2), w.Workspace)

	assert.Equal(t, originalRect, app.fake.Get(settings).Rect)
	assert.Equal(t, []string{"hide"}, app.fake.TaskbarOp)

	status := app.Status()
	assert.True(t, status.WorkMode)
	assert.Equal(t, int32(1), status.ActiveWorkspace)
	assert.Equal(t, 2, status.WindowCount)
}

func TestWorkModeOffRestoresWindows(t *testing.T) {
	app := newTestApp(t, "")
	editor := addWindow(app.fake, 1, "editor", originalRect)

	_, err := app.ToggleWorkMode()
	require.NoError(t, err)
	require.NotEqual(t, originalRect, app.fake.Get(editor).Rect)

	on, err := app.ToggleWorkMode()
	require.NoError(t, err)
	assert.False(t, on)

	ed := app.fake.Get(editor)
	assert.Equal(t, style.OverlappedWindow|style.Visible, ed.Style)
	assert.Equal(t, originalRect, ed.Rect)
	assert.Equal(t, 0, app.registry.Len())
	assert.Equal(t, []string{"hide", "show"}, app.fake.TaskbarOp)
	assert.False(t, app.watcher.Running())
}

func TestWorkModeOffShowsWindowsOfOtherWorkspaces(t *testing.T) {
	app := newTestApp(t, "")
	editor := addWindow(app.fake, 1, "editor", originalRect)
	scratch := addWindow(app.fake, 2, "notes.scratch", originalRect)

	_, err := app.ToggleWorkMode()
	require.NoError(t, err)
	require.False(t, app.fake.Get(scratch).Style.Has(style.Visible))
	w, ok := app.registry.Get(scratch)
	require.True(t, ok)
	require.True(t, w.Hidden)

	app.fake.ResetCalls()
	_, err = app.ToggleWorkMode()
	require.NoError(t, err)

	assert.Contains(t, app.fake.Calls(), "Show 0x2 5")
	assert.NotContains(t, app.fake.Calls(), "Show 0x1 5", "visible windows are not shown again")
	assert.True(t, app.fake.Get(scratch).Style.Has(style.Visible))
	assert.True(t, app.fake.Get(editor).Style.Has(style.Visible))
	assert.Equal(t, originalRect, app.fake.Get(scratch).Rect)
}

func TestWorkspaceSwitchTracksHiddenWindows(t *testing.T) {
	app := newTestApp(t, "")
	editor := addWindow(app.fake, 1, "editor", originalRect)
	scratch := addWindow(app.fake, 2, "notes.scratch", originalRect)
	_, err := app.ToggleWorkMode()
	require.NoError(t, err)

	require.NoError(t, app.Dispatch(binding.Action{Kind: binding.ChangeWorkspace, ID: 2}))
	ed, _ := app.registry.Get(editor)
	sc, _ := app.registry.Get(scratch)
	assert.True(t, ed.Hidden)
	assert.False(t, sc.Hidden)

	_, err = app.ToggleWorkMode()
	require.NoError(t, err)
	assert.True(t, app.fake.Get(editor).Style.Has(style.Visible))
	assert.True(t, app.fake.Get(scratch).Style.Has(style.Visible))
}

func TestClosedWindowReflowsTheRest(t *testing.T) {
	app := newTestApp(t, "")
	a := addWindow(app.fake, 1, "a", originalRect)
	b := addWindow(app.fake, 2, "b", originalRect)
	_, err := app.ToggleWorkMode()
	require.NoError(t, err)
	assert.Equal(t, platform.Rect{Right: 960, Bottom: 1080}, app.fake.Get(a).Rect)

	app.fake.Remove(a)
	app.watcher.ScanNow()

	assert.False(t, app.registry.Contains(a))
	assert.Equal(t, platform.Rect{Right: 1920, Bottom: 1080}, app.fake.Get(b).Rect)
}

func TestDispatchFocusAndSwap(t *testing.T) {
	app := newTestApp(t, "")
	a := addWindow(app.fake, 1, "a", originalRect)
	b := addWindow(app.fake, 2, "b", originalRect)
	_, err := app.ToggleWorkMode()
	require.NoError(t, err)

	app.fake.SetForegroundHandle(a)
	require.NoError(t, app.Dispatch(binding.Action{Kind: binding.Focus, Direction: binding.Right}))
	fg, err := app.fake.Foreground()
	require.NoError(t, err)
	assert.Equal(t, b, fg)

	require.NoError(t, app.Dispatch(binding.Action{Kind: binding.Swap, Direction: binding.Left}))
	assert.Equal(t, platform.Rect{Right: 960, Bottom: 1080}, app.fake.Get(b).Rect)
	assert.Equal(t, platform.Rect{Left: 960, Right: 1920, Bottom: 1080}, app.fake.Get(a).Rect)
}

func TestDispatchWithoutFocusedWindowIsNoop(t *testing.T) {
	app := newTestApp(t, "")
	assert.NoError(t, app.Dispatch(binding.Action{Kind: binding.CloseTile}))
	assert.NoError(t, app.Dispatch(binding.Action{Kind: binding.ToggleFullscreen}))
}

func TestDispatchFullscreenAndFloating(t *testing.T) {
	app := newTestApp(t, "")
	a := addWindow(app.fake, 1, "a", originalRect)
	b := addWindow(app.fake, 2, "b", originalRect)
	_, err := app.ToggleWorkMode()
	require.NoError(t, err)
	app.fake.SetForegroundHandle(a)

	require.NoError(t, app.Dispatch(binding.Action{Kind: binding.ToggleFullscreen}))
	assert.Equal(t, platform.Rect{Right: 1920, Bottom: 1080}, app.fake.Get(a).Rect)
	assert.Equal(t, platform.Rect{Right: 1920, Bottom: 1080}, app.fake.Get(b).Rect, "b is the only tile left")

	require.NoError(t, app.Dispatch(binding.Action{Kind: binding.ToggleFullscreen}))
	assert.Equal(t, platform.Rect{Right: 960, Bottom: 1080}, app.fake.Get(a).Rect)

	require.NoError(t, app.Dispatch(binding.Action{Kind: binding.ToggleFloatingMode}))
	w, _ := app.registry.Get(a)
	assert.True(t, w.Floating)
	assert.True(t, app.fake.Get(a).ExStyle.Has(style.Topmost))

	require.NoError(t, app.Dispatch(binding.Action{Kind: binding.ToggleFloatingMode}))
	assert.False(t, app.fake.Get(a).ExStyle.Has(style.Topmost))
}

func TestDispatchIgnoreAndMinimize(t *testing.T) {
	app := newTestApp(t, "")
	a := addWindow(app.fake, 1, "a", originalRect)
	b := addWindow(app.fake, 2, "b", originalRect)
	_, err := app.ToggleWorkMode()
	require.NoError(t, err)

	app.fake.SetForegroundHandle(a)
	require.NoError(t, app.Dispatch(binding.Action{Kind: binding.IgnoreTile}))
	assert.False(t, app.registry.Contains(a))
	assert.Equal(t, originalRect, app.fake.Get(a).Rect)
	assert.Equal(t, platform.Rect{Right: 1920, Bottom: 1080}, app.fake.Get(b).Rect)

	app.fake.SetForegroundHandle(b)
	require.NoError(t, app.Dispatch(binding.Action{Kind: binding.MinimizeTile}))
	assert.False(t, app.registry.Contains(b))
	assert.True(t, app.fake.Get(b).Minimized)
}

func TestDispatchCloseTile(t *testing.T) {
	app := newTestApp(t, "")
	a := addWindow(app.fake, 1, "a", originalRect)
	_, err := app.ToggleWorkMode()
	require.NoError(t, err)

	app.fake.SetForegroundHandle(a)
	require.NoError(t, app.Dispatch(binding.Action{Kind: binding.CloseTile}))
	assert.True(t, app.fake.Get(a).Closed)
}

func TestDispatchWorkspaces(t *testing.T) {
	app := newTestApp(t, "")
	a := addWindow(app.fake, 1, "a", originalRect)
	b := addWindow(app.fake, 2, "b", originalRect)
	_, err := app.ToggleWorkMode()
	require.NoError(t, err)

	app.fake.SetForegroundHandle(a)
	require.NoError(t, app.Dispatch(binding.Action{Kind: binding.MoveToWorkspace, ID: 2}))
	assert.False(t, app.fake.Get(a).Style.Has(style.Visible))
	assert.Equal(t, platform.Rect{Right: 1920, Bottom: 1080}, app.fake.Get(b).Rect)

	require.NoError(t, app.Dispatch(binding.Action{Kind: binding.ChangeWorkspace, ID: 2}))
	assert.Equal(t, int32(2), app.Status().ActiveWorkspace)
	assert.True(t, app.fake.Get(a).Style.Has(style.Visible))
	assert.False(t, app.fake.Get(b).Style.Has(style.Visible))
}

func TestDispatchLaunchAndQuit(t *testing.T) {
	app := newTestApp(t, "")
	require.NoError(t, app.Dispatch(binding.Action{Kind: binding.Launch, Command: "wt.exe -p shell"}))
	assert.Equal(t, []string{"wt.exe -p shell"}, app.launches.all())

	require.NoError(t, app.Dispatch(binding.Action{Kind: binding.Quit}))
	select {
	case <-app.quit:
	default:
		t.Fatal("quit channel not closed")
	}
}

func TestDispatchUnsupportedLayoutActions(t *testing.T) {
	app := newTestApp(t, "")
	assert.NoError(t, app.Dispatch(binding.Action{Kind: binding.Resize, Direction: binding.Left, Amount: 10}))
	assert.NoError(t, app.Dispatch(binding.Action{Kind: binding.Split, Split: binding.Vertical}))
	assert.NoError(t, app.Dispatch(binding.Action{Kind: binding.MoveWorkspaceToMonitor, Monitor: 1}))
}

func TestDispatchConfigActions(t *testing.T) {
	app := newTestApp(t, "")
	require.NoError(t, app.Dispatch(binding.Action{Kind: binding.IncrementConfig, Field: "margin", Value: 5}))
	assert.Equal(t, int32(5), app.store.Snapshot().Margin)

	require.NoError(t, app.Dispatch(binding.Action{Kind: binding.ToggleConfig, Field: "use_border"}))
	assert.True(t, app.store.Snapshot().UseBorder)

	assert.NoError(t, app.Dispatch(binding.Action{Kind: binding.IncrementConfig, Field: "bogus", Value: 1}))
}

func TestScriptBindingsAndCallbacks(t *testing.T) {
	script := `
bind("Alt+Enter", launch("wt.exe"))
bind("Alt+B", callback(function() error("boom") end))
bind("Alt+N", callback(function() end))
`
	app := newTestApp(t, script)

	var callbacks []binding.Action
	var sawLaunch bool
	for _, kb := range app.store.Snapshot().Keybindings {
		switch kb.Action.Kind {
		case binding.Callback:
			callbacks = append(callbacks, kb.Action)
		case binding.Launch:
			sawLaunch = kb.Action.Command == "wt.exe"
		}
	}
	require.Len(t, callbacks, 2)
	assert.True(t, sawLaunch)

	err := app.Dispatch(callbacks[0])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.NoError(t, app.Dispatch(callbacks[1]))
}

func TestNewFailsOnBrokenScript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "init.lua"), []byte("bind("), 0o644))

	_, err := New(Options{ConfigPath: path, Backend: platformtest.New(), Logger: quietLogger()})
	assert.Error(t, err)
}

func TestAlterConfigReportsUnknownFields(t *testing.T) {
	app := newTestApp(t, "")

	got, err := app.AlterConfig(ipc.AlterConfigPayload{Op: ipc.OpIncrement, Field: "bogus", Value: 1})
	require.NoError(t, err)
	assert.False(t, got.Applied)
	assert.NotEmpty(t, got.Reason)

	got, err = app.AlterConfig(ipc.AlterConfigPayload{Op: ipc.OpIncrement, Field: "padding", Value: 5})
	require.NoError(t, err)
	assert.True(t, got.Applied)
	got, err = app.AlterConfig(ipc.AlterConfigPayload{Op: ipc.OpDecrement, Field: "padding", Value: 3})
	require.NoError(t, err)
	assert.True(t, got.Applied)
	assert.Equal(t, int32(2), app.store.Snapshot().Padding)

	_, err = app.AlterConfig(ipc.AlterConfigPayload{Op: "multiply", Field: "margin"})
	assert.Error(t, err)
}

func TestAlterConfigReflowsInWorkMode(t *testing.T) {
	app := newTestApp(t, "")
	a := addWindow(app.fake, 1, "a", originalRect)
	_, err := app.ToggleWorkMode()
	require.NoError(t, err)

	_, err = app.AlterConfig(ipc.AlterConfigPayload{Op: ipc.OpIncrement, Field: "padding", Value: 10})
	require.NoError(t, err)
	assert.Equal(t, platform.Rect{Left: 10, Top: 10, Right: 1910, Bottom: 1070}, app.fake.Get(a).Rect)
}

func TestReloadPicksUpFileChanges(t *testing.T) {
	app := newTestApp(t, "")
	path := filepath.Join(app.dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Replace(testConfig, "margin: 0", "margin: 8", 1)), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(app.dir, "init.lua"), []byte(`bind("Alt+Q", quit())`), 0o644))

	require.NoError(t, app.Reload())
	cfg := app.store.Snapshot()
	assert.Equal(t, int32(8), cfg.Margin)
	assert.Len(t, cfg.Keybindings, 2)
}

func TestReloadKeepsConfigOnError(t *testing.T) {
	app := newTestApp(t, "")
	path := filepath.Join(app.dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("margin: [\n"), 0o644))

	assert.Error(t, app.Reload())
	assert.Len(t, app.store.Snapshot().Keybindings, 1)
}

func TestWindowsAndBar(t *testing.T) {
	app := newTestApp(t, "")
	a := addWindow(app.fake, 1, "a", originalRect)
	addWindow(app.fake, 2, "b.scratch", originalRect)
	_, err := app.ToggleWorkMode()
	require.NoError(t, err)
	app.fake.SetForegroundHandle(a)

	windows := app.Windows()
	require.Len(t, windows, 2)
	assert.Equal(t, a.String(), windows[0].Handle)
	assert.Equal(t, "app.exe", windows[0].Process)
	assert.Equal(t, int32(2), windows[1].Workspace)

	data := app.Bar()
	assert.False(t, data.Open)
	texts := map[string][]string{}
	for _, seg := range append(append(data.Snapshot.Left, data.Snapshot.Center...), data.Snapshot.Right...) {
		for _, text := range seg.Texts {
			texts[seg.Component] = append(texts[seg.Component], text.Value)
		}
	}
	assert.Equal(t, []string{" 1 ", " 2 "}, texts["Workspaces"])
	assert.Equal(t, []string{"a"}, texts["CurrentWindow"])

	require.NoError(t, app.ClickBar("Workspaces", 1))
	assert.Equal(t, int32(2), app.Status().ActiveWorkspace)
	assert.Error(t, app.ClickBar("Nope", 0))
}

func TestRunServesSocketUntilQuit(t *testing.T) {
	app := newTestApp(t, "")
	dir, err := os.MkdirTemp("", "wtd")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	app.opts.SocketPath = filepath.Join(dir, "s.sock")

	errc := make(chan error, 1)
	go func() { errc <- app.Run(context.Background()) }()

	client := ipc.NewClientAt(app.opts.SocketPath)
	require.Eventually(t, func() bool { return client.Ping() == nil }, 2*time.Second, 10*time.Millisecond)

	on, err := client.ToggleWorkMode()
	require.NoError(t, err)
	assert.True(t, on)

	status, err := client.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.WorkMode)

	app.Quit()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
	assert.False(t, app.workMode.Enabled(), "work mode is left on shutdown")
}
