package ipc

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/wintile/internal/bar"
)

type fakeController struct {
	mu       sync.Mutex
	workMode bool
	altered  []AlterConfigPayload
	reloads  int
	clicks   []string
	failNext error
}

func (f *fakeController) Status() StatusData {
	f.mu.Lock()
	defer f.mu.Unlock()
	return StatusData{WorkMode: f.workMode, ActiveWorkspace: 2, WindowCount: 3, ConfigPath: "/cfg.yaml"}
}

func (f *fakeController) ToggleWorkMode() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return f.workMode, err
	}
	f.workMode = !f.workMode
	return f.workMode, nil
}

func (f *fakeController) AlterConfig(p AlterConfigPayload) (AlterConfigData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.altered = append(f.altered, p)
	if p.Field == "bogus" {
		return AlterConfigData{Applied: false, Reason: "unknown field"}, nil
	}
	return AlterConfigData{Applied: true}, nil
}

func (f *fakeController) Reload() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads++
	return nil
}

func (f *fakeController) Windows() []WindowInfo {
	return []WindowInfo{{Handle: "0x10", Title: "Terminal", Process: "wt.exe", Workspace: 1}}
}

func (f *fakeController) Bar() BarData {
	return BarData{
		Open:       true,
		Background: 0x40342e,
		Snapshot: bar.Snapshot{
			Center: []bar.Segment{{Component: "CurrentWindow", Texts: []bar.Text{bar.Basic("Terminal")}}},
		},
	}
}

func (f *fakeController) ClickBar(component string, idx int) error {
	if component != "Workspaces" {
		return errors.New("not clickable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clicks = append(f.clicks, component)
	return nil
}

func startServer(t *testing.T) (*fakeController, *Client) {
	t.Helper()
	// Unix socket paths are length limited, so avoid the long t.TempDir names.
	dir, err := os.MkdirTemp("", "wtipc")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	ctrl := &fakeController{}
	srv := NewServerAt(filepath.Join(dir, "s.sock"), ctrl, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Stop)
	return ctrl, NewClientAt(srv.SocketPath())
}

func TestStatusAndToggle(t *testing.T) {
	ctrl, client := startServer(t)

	status, err := client.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.DaemonRunning)
	assert.Equal(t, int32(2), status.ActiveWorkspace)
	assert.Equal(t, 3, status.WindowCount)
	assert.False(t, status.WorkMode)

	enabled, err := client.ToggleWorkMode()
	require.NoError(t, err)
	assert.True(t, enabled)

	ctrl.mu.Lock()
	ctrl.failNext = errors.New("hooks failed")
	ctrl.mu.Unlock()
	_, err = client.ToggleWorkMode()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hooks failed")

	require.NoError(t, client.Ping())
}

func TestAlterConfig(t *testing.T) {
	ctrl, client := startServer(t)

	data, err := client.AlterConfig(OpIncrement, "margin", 5)
	require.NoError(t, err)
	assert.True(t, data.Applied)

	data, err = client.AlterConfig(OpToggle, "bogus", 0)
	require.NoError(t, err)
	assert.False(t, data.Applied)
	assert.Equal(t, "unknown field", data.Reason)

	_, err = client.AlterConfig("multiply", "margin", 2)
	assert.Error(t, err)
	_, err = client.AlterConfig(OpDecrement, "", 2)
	assert.Error(t, err)

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	require.Len(t, ctrl.altered, 2)
	assert.Equal(t, AlterConfigPayload{Op: OpIncrement, Field: "margin", Value: 5}, ctrl.altered[0])
}

func TestReloadWindowsAndBar(t *testing.T) {
	ctrl, client := startServer(t)

	require.NoError(t, client.Reload())
	ctrl.mu.Lock()
	assert.Equal(t, 1, ctrl.reloads)
	ctrl.mu.Unlock()

	windows, err := client.ListWindows()
	require.NoError(t, err)
	require.Len(t, windows.Windows, 1)
	assert.Equal(t, "wt.exe", windows.Windows[0].Process)

	b, err := client.GetBar()
	require.NoError(t, err)
	assert.True(t, b.Open)
	assert.Equal(t, uint32(0x40342e), b.Background)
	assert.Equal(t, "Terminal", bar.PlainText(b.Snapshot))

	require.NoError(t, client.ClickBar("Workspaces", 1))
	assert.Error(t, client.ClickBar("Date", 0))
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	assert.Equal(t, []string{"Workspaces"}, ctrl.clicks)
}

func TestUnknownCommand(t *testing.T) {
	_, client := startServer(t)
	_, err := client.sendRequest(&Request{Command: "NOPE"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown command")
}

func TestClientWithoutDaemon(t *testing.T) {
	client := NewClientAt(filepath.Join(os.TempDir(), "wintile-missing.sock"))
	assert.Error(t, client.Ping())
}
