package daemon

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/1broseidon/wintile/internal/bar"
	"github.com/1broseidon/wintile/internal/binding"
	"github.com/1broseidon/wintile/internal/config"
	"github.com/1broseidon/wintile/internal/hotkeys"
	"github.com/1broseidon/wintile/internal/ipc"
	"github.com/1broseidon/wintile/internal/platform"
	"github.com/1broseidon/wintile/internal/script"
	"github.com/1broseidon/wintile/internal/tiling"
	"github.com/1broseidon/wintile/internal/window"
	"github.com/1broseidon/wintile/internal/workmode"
)

// Options configure an App.
type Options struct {
	ConfigPath   string
	Backend      platform.Backend
	Logger       *slog.Logger
	PollInterval time.Duration
	BarInterval  time.Duration
	// SocketPath overrides the IPC socket location.
	SocketPath string
	// Launch replaces process start-up for Launch actions.
	Launch func(command string) error
}

// eventLooper is implemented by backends whose events need a running loop,
// such as X11 key grabs.
type eventLooper interface {
	EventLoop()
	QuitEventLoop()
}

// App is the running window manager.
type App struct {
	opts   Options
	api    platform.Backend
	logger *slog.Logger

	store      *config.Store
	registry   *window.Registry
	tiler      *tiling.Tiler
	manager    *Manager
	watcher    *Watcher
	bar        *bar.Runner
	workMode   *workmode.Orchestrator
	dispatcher *Dispatcher
	hotkeys    *hotkeys.Handler

	scriptMu sync.Mutex
	script   *script.Engine

	quit     chan struct{}
	quitOnce sync.Once
}

// New loads the configuration and init.lua and builds every component. Work
// mode stays off until Run.
func New(opts Options) (*App, error) {
	if opts.Backend == nil {
		return nil, errors.New("daemon: no platform backend")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := config.Load(opts.ConfigPath, logger)
	if err != nil {
		return nil, err
	}
	engine, err := loadScript(opts.ConfigPath, cfg, logger)
	if err != nil {
		return nil, err
	}

	a := &App{
		opts:   opts,
		api:    opts.Backend,
		logger: logger,
		store:  config.NewStore(cfg, logger),
		script: engine,
		quit:   make(chan struct{}),
	}

	a.registry = window.NewRegistry(logger)
	a.tiler = tiling.NewTiler(a.api, a.registry, firstWorkspace(cfg), logger)
	a.manager = NewManager(a.api, a.registry, a.tiler, a.store, logger)
	a.watcher = NewWatcher(WatcherConfig{Interval: opts.PollInterval, Logger: logger}, a.api.TopLevelWindows, a.manager)

	bg := uint32(cfg.AppBarBg)
	a.bar = bar.NewRunner(bar.RunnerConfig{
		Layout:   bar.DefaultLayout(barState{a}, cfg.AppBarDatePattern, cfg.AppBarTimePattern, bar.Highlight(bg, cfg.LightTheme), time.Now),
		Display:  a.api.PrimaryDisplay,
		Interval: opts.BarInterval,
		Logger:   logger,
	})

	var taskbars workmode.Taskbars = noTaskbars{}
	if tb, ok := a.api.(platform.Taskbars); ok {
		taskbars = tb
	}
	a.workMode = workmode.New(workmode.Deps{
		Config:    a.store,
		Hooks:     a.watcher,
		Bar:       a.bar,
		Taskbars:  taskbars,
		Unmanager: a.manager,
		Logger:    logger,
	})

	a.dispatcher = NewDispatcher(DispatcherConfig{
		API:      a.api,
		Manager:  a.manager,
		Tiler:    a.tiler,
		Store:    a.store,
		WorkMode: a.workMode,
		Scripts:  a.scripts,
		Launch:   opts.Launch,
		Quit:     a.Quit,
		Logger:   logger,
	})

	if h, err := hotkeys.NewHandler(a.api, a.dispatcher.Handle, logger); err != nil {
		logger.Info("global hotkeys unavailable, use the control socket", "error", err)
	} else {
		a.hotkeys = h
		if err := h.Bind(cfg.Keybindings); err != nil {
			logger.Warn("some hotkeys could not be registered", "error", err)
		}
	}

	return a, nil
}

// loadScript runs init.lua when it exists and appends its bindings to cfg.
func loadScript(configPath string, cfg *config.Config, logger *slog.Logger) (*script.Engine, error) {
	engine := script.New(logger)
	path := config.ScriptPath(configPath)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return engine, nil
	}
	if err := engine.DoFile(path); err != nil {
		engine.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Keybindings = binding.Dedupe(append(cfg.Keybindings, engine.Bindings()...))
	logger.Info("loaded script", "path", path, "bindings", len(engine.Bindings()), "callbacks", engine.Callbacks())
	return engine, nil
}

func firstWorkspace(cfg *config.Config) int32 {
	if len(cfg.Workspaces) > 0 {
		return cfg.Workspaces[0].ID
	}
	return 1
}

func (a *App) scripts() Invoker {
	a.scriptMu.Lock()
	defer a.scriptMu.Unlock()
	if a.script == nil {
		return nil
	}
	return a.script
}

// Run serves the control socket and, when configured, enters work mode. It
// returns when ctx is cancelled or a Quit action runs, leaving work mode on
// the way out.
func (a *App) Run(ctx context.Context) error {
	var server *ipc.Server
	if a.opts.SocketPath != "" {
		server = ipc.NewServerAt(a.opts.SocketPath, a, a.logger)
	} else {
		s, err := ipc.NewServer(a, a.logger)
		if err != nil {
			return err
		}
		server = s
	}
	if err := server.Start(); err != nil {
		return err
	}
	defer server.Stop()

	if looper, ok := a.api.(eventLooper); ok {
		go looper.EventLoop()
		defer looper.QuitEventLoop()
	}

	if a.store.Snapshot().WorkMode {
		if err := a.workMode.Set(true); err != nil {
			a.logger.Error("failed to enter work mode", "error", err)
		}
	}

	a.logger.Info("wintile daemon running", "config", a.opts.ConfigPath, "work_mode", a.workMode.Enabled())

	select {
	case <-ctx.Done():
	case <-a.quit:
	}

	a.logger.Info("wintile daemon shutting down")
	err := a.workMode.Set(false)
	if a.hotkeys != nil {
		a.hotkeys.Release()
	}
	a.scriptMu.Lock()
	if a.script != nil {
		a.script.Close()
	}
	a.scriptMu.Unlock()
	return err
}

// Quit asks Run to return.
func (a *App) Quit() {
	a.quitOnce.Do(func() { close(a.quit) })
}

// Dispatch runs a keybinding action.
func (a *App) Dispatch(action binding.Action) error {
	return a.dispatcher.Dispatch(action)
}

// Status implements ipc.Controller.
func (a *App) Status() ipc.StatusData {
	cfg := a.store.Snapshot()
	return ipc.StatusData{
		WorkMode:        a.workMode.Enabled(),
		ActiveWorkspace: a.tiler.ActiveWorkspace(),
		WindowCount:     a.registry.Len(),
		Keybindings:     len(cfg.Keybindings),
		ConfigPath:      a.opts.ConfigPath,
	}
}

// ToggleWorkMode implements ipc.Controller.
func (a *App) ToggleWorkMode() (bool, error) {
	err := a.workMode.Toggle()
	return a.workMode.Enabled(), err
}

// AlterConfig implements ipc.Controller. Unknown fields are reported as not
// applied rather than failing.
func (a *App) AlterConfig(p ipc.AlterConfigPayload) (ipc.AlterConfigData, error) {
	var err error
	switch p.Op {
	case ipc.OpIncrement:
		err = a.store.IncrementField(p.Field, p.Value)
	case ipc.OpDecrement:
		err = a.store.DecrementField(p.Field, p.Value)
	case ipc.OpToggle:
		err = a.store.ToggleField(p.Field)
	default:
		return ipc.AlterConfigData{}, fmt.Errorf("unknown config operation %q", p.Op)
	}
	if errors.Is(err, config.ErrUnknownField) {
		return ipc.AlterConfigData{Applied: false, Reason: err.Error()}, nil
	}
	if err != nil {
		return ipc.AlterConfigData{}, err
	}
	if a.workMode.Enabled() {
		if err := a.manager.Reflow(); err != nil {
			a.logger.Warn("reflow after config change failed", "error", err)
		}
	}
	return ipc.AlterConfigData{Applied: true}, nil
}

// Reload implements ipc.Controller: it re-reads the config file and
// init.lua, rebinds the hotkeys and reflows.
func (a *App) Reload() error {
	cfg, err := config.LoadFromPath(a.opts.ConfigPath, a.logger)
	if err != nil {
		return err
	}
	engine, err := loadScript(a.opts.ConfigPath, cfg, a.logger)
	if err != nil {
		return err
	}

	a.scriptMu.Lock()
	old := a.script
	a.script = engine
	a.scriptMu.Unlock()
	if old != nil {
		old.Close()
	}

	a.store.Replace(cfg)
	if a.hotkeys != nil {
		if err := a.hotkeys.Bind(cfg.Keybindings); err != nil {
			a.logger.Warn("some hotkeys could not be registered", "error", err)
		}
	}
	a.logger.Info("configuration reloaded", "path", a.opts.ConfigPath, "keybindings", len(cfg.Keybindings))

	if a.workMode.Enabled() {
		return a.manager.Reflow()
	}
	return nil
}

// Windows implements ipc.Controller.
func (a *App) Windows() []ipc.WindowInfo {
	all := a.registry.All()
	out := make([]ipc.WindowInfo, 0, len(all))
	for _, w := range all {
		out = append(out, ipc.WindowInfo{
			Handle:     w.Handle.String(),
			Title:      w.Title,
			Process:    w.ProcessName,
			Workspace:  w.Workspace,
			Floating:   w.Floating,
			Fullscreen: w.Fullscreen,
			Rule:       fmt.Sprint(w.Rule.Pattern),
			Style:      w.Style.String(),
		})
	}
	return out
}

// Bar implements ipc.Controller.
func (a *App) Bar() ipc.BarData {
	cfg := a.store.Snapshot()
	return ipc.BarData{
		Snapshot:   a.bar.Snapshot(),
		Open:       a.bar.Open(),
		Background: uint32(cfg.AppBarBg),
		LightTheme: cfg.LightTheme,
	}
}

// ClickBar implements ipc.Controller.
func (a *App) ClickBar(component string, idx int) error {
	return a.bar.Click(component, idx)
}

// barState feeds the built-in bar components.
type barState struct{ a *App }

func (s barState) WorkModeEnabled() bool { return s.a.workMode.Enabled() }

func (s barState) Workspaces() ([]int32, int32) {
	active := s.a.tiler.ActiveWorkspace()
	seen := map[int32]bool{active: true}
	for _, ws := range s.a.store.Snapshot().Workspaces {
		seen[ws.ID] = true
	}
	for _, w := range s.a.registry.All() {
		seen[w.Workspace] = true
	}
	ids := make([]int32, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, active
}

func (s barState) ChangeWorkspace(id int32) {
	s.a.dispatcher.Handle(binding.Action{Kind: binding.ChangeWorkspace, ID: id})
}

func (s barState) ActiveWindowTitle() string {
	h, err := s.a.api.Foreground()
	if err != nil || h.IsZero() {
		return ""
	}
	title, err := s.a.api.Title(h)
	if err != nil {
		return ""
	}
	return title
}

type noTaskbars struct{}

func (noTaskbars) HideTaskbars() error { return nil }
func (noTaskbars) ShowTaskbars() error { return nil }
