package mcp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/wintile/internal/bar"
	"github.com/1broseidon/wintile/internal/ipc"
)

type fakeClient struct {
	workMode bool
	altered  []ipc.AlterConfigPayload
	reloads  int
	clicks   []ipc.ClickBarPayload
	windows  []ipc.WindowInfo
	snapshot bar.Snapshot
	err      error
}

func (f *fakeClient) GetStatus() (*ipc.StatusData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.StatusData{WorkMode: f.workMode, ActiveWorkspace: 1, WindowCount: len(f.windows), ConfigPath: "/tmp/config.yaml", DaemonRunning: true}, nil
}

func (f *fakeClient) ToggleWorkMode() (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.workMode = !f.workMode
	return f.workMode, nil
}

func (f *fakeClient) AlterConfig(op, field string, value int32) (*ipc.AlterConfigData, error) {
	f.altered = append(f.altered, ipc.AlterConfigPayload{Op: op, Field: field, Value: value})
	if field == "bogus" {
		return &ipc.AlterConfigData{Applied: false, Reason: "unknown field"}, nil
	}
	return &ipc.AlterConfigData{Applied: true}, nil
}

func (f *fakeClient) Reload() error {
	f.reloads++
	return f.err
}

func (f *fakeClient) ListWindows() (*ipc.WindowsData, error) {
	return &ipc.WindowsData{Windows: f.windows}, nil
}

func (f *fakeClient) GetBar() (*ipc.BarData, error) {
	return &ipc.BarData{Snapshot: f.snapshot, Open: true}, nil
}

func (f *fakeClient) ClickBar(component string, idx int) error {
	f.clicks = append(f.clicks, ipc.ClickBarPayload{Component: component, Index: idx})
	return nil
}

func newTestServer(c *fakeClient) *Server {
	return NewServer(c, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGetStatus(t *testing.T) {
	c := &fakeClient{workMode: true}
	s := newTestServer(c)

	_, out, err := s.handleGetStatus(context.Background(), nil, GetStatusInput{})
	require.NoError(t, err)
	assert.True(t, out.WorkMode)
	assert.Equal(t, int32(1), out.ActiveWorkspace)
	assert.Equal(t, "/tmp/config.yaml", out.ConfigPath)

	c.err = errors.New("connection refused")
	_, _, err = s.handleGetStatus(context.Background(), nil, GetStatusInput{})
	assert.ErrorContains(t, err, "daemon unreachable")
}

func TestToggleWorkMode(t *testing.T) {
	c := &fakeClient{}
	s := newTestServer(c)

	_, out, err := s.handleToggleWorkMode(context.Background(), nil, ToggleWorkModeInput{})
	require.NoError(t, err)
	assert.True(t, out.WorkMode)

	_, out, err = s.handleToggleWorkMode(context.Background(), nil, ToggleWorkModeInput{})
	require.NoError(t, err)
	assert.False(t, out.WorkMode)
}

func TestAlterConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		in      AlterConfigInput
		wantErr bool
		applied bool
	}{
		{"increment", AlterConfigInput{Op: "increment", Field: "margin", Value: 5}, false, true},
		{"op is case insensitive", AlterConfigInput{Op: " Decrement ", Field: "padding", Value: 2}, false, true},
		{"toggle needs no value", AlterConfigInput{Op: "toggle", Field: "use_border"}, false, true},
		{"unknown field is not applied", AlterConfigInput{Op: "toggle", Field: "bogus"}, false, false},
		{"unknown op", AlterConfigInput{Op: "multiply", Field: "margin", Value: 2}, true, false},
		{"zero amount", AlterConfigInput{Op: "increment", Field: "margin"}, true, false},
		{"missing field", AlterConfigInput{Op: "toggle"}, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&fakeClient{})
			_, out, err := s.handleAlterConfig(context.Background(), nil, tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.applied, out.Applied)
		})
	}
}

func TestAlterConfigNormalisesOp(t *testing.T) {
	c := &fakeClient{}
	s := newTestServer(c)

	_, _, err := s.handleAlterConfig(context.Background(), nil, AlterConfigInput{Op: "INCREMENT", Field: "margin", Value: 3})
	require.NoError(t, err)
	require.Len(t, c.altered, 1)
	assert.Equal(t, ipc.AlterConfigPayload{Op: ipc.OpIncrement, Field: "margin", Value: 3}, c.altered[0])
}

func TestReload(t *testing.T) {
	c := &fakeClient{}
	s := newTestServer(c)

	_, out, err := s.handleReload(context.Background(), nil, ReloadInput{})
	require.NoError(t, err)
	assert.True(t, out.Reloaded)
	assert.Equal(t, 1, c.reloads)

	c.err = errors.New("bad yaml")
	_, _, err = s.handleReload(context.Background(), nil, ReloadInput{})
	assert.Error(t, err)
}

func TestListWindowsFiltersByWorkspace(t *testing.T) {
	c := &fakeClient{windows: []ipc.WindowInfo{
		{Handle: "0x1", Title: "editor", Workspace: 1},
		{Handle: "0x2", Title: "notes", Workspace: 2, Floating: true},
	}}
	s := newTestServer(c)

	_, out, err := s.handleListWindows(context.Background(), nil, ListWindowsInput{})
	require.NoError(t, err)
	assert.Len(t, out.Windows, 2)

	ws := int32(2)
	_, out, err = s.handleListWindows(context.Background(), nil, ListWindowsInput{Workspace: &ws})
	require.NoError(t, err)
	require.Len(t, out.Windows, 1)
	assert.Equal(t, "notes", out.Windows[0].Title)
	assert.True(t, out.Windows[0].Floating)

	ws = 9
	_, out, err = s.handleListWindows(context.Background(), nil, ListWindowsInput{Workspace: &ws})
	require.NoError(t, err)
	assert.NotNil(t, out.Windows)
	assert.Empty(t, out.Windows)
}

func TestGetBarSections(t *testing.T) {
	c := &fakeClient{snapshot: bar.Snapshot{
		Left:   []bar.Segment{{Component: "Workspaces", Texts: []bar.Text{bar.Basic(" 1 "), bar.Basic(" 2 ")}}},
		Center: []bar.Segment{{Component: "Date", Texts: []bar.Text{bar.Basic("15 Mar 2024")}}},
		Right:  []bar.Segment{{Component: "Time", Texts: []bar.Text{bar.Basic("09:07:03")}}},
	}}
	s := newTestServer(c)

	_, out, err := s.handleGetBar(context.Background(), nil, GetBarInput{})
	require.NoError(t, err)
	assert.True(t, out.Open)
	assert.Equal(t, " 1  2 ", out.Left)
	assert.Equal(t, "15 Mar 2024", out.Center)
	assert.Equal(t, "09:07:03", out.Right)
}

func TestClickBar(t *testing.T) {
	c := &fakeClient{}
	s := newTestServer(c)

	_, out, err := s.handleClickBar(context.Background(), nil, ClickBarInput{Component: "Workspaces", Index: 1})
	require.NoError(t, err)
	assert.True(t, out.Clicked)
	assert.Equal(t, []ipc.ClickBarPayload{{Component: "Workspaces", Index: 1}}, c.clicks)

	_, _, err = s.handleClickBar(context.Background(), nil, ClickBarInput{Component: "Workspaces", Index: -1})
	assert.Error(t, err)
	_, _, err = s.handleClickBar(context.Background(), nil, ClickBarInput{})
	assert.Error(t, err)
}

func TestToolsOverInMemoryTransport(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(&fakeClient{workMode: true})

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()
	ss, err := s.mcpServer.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer ss.Close()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test", Version: "0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer cs.Close()

	tools, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"alter_config", "click_bar", "get_bar", "get_status", "list_windows", "reload_config", "toggle_work_mode"}, names)

	res, err := cs.CallTool(ctx, &mcpsdk.CallToolParams{Name: "get_status", Arguments: map[string]any{}})
	require.NoError(t, err)
	assert.False(t, res.IsError)
}
