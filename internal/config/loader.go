package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/wintile/internal/binding"
	"github.com/1broseidon/wintile/internal/rules"
)

const (
	appDirName     = "wintile"
	configFileName = "config.yaml"

	// ScriptFileName is the optional Lua script loaded next to the config file.
	ScriptFileName = "init.lua"
)

//go:embed default_config.yaml
var defaultDocument []byte

// DefaultDocument returns the document written on first run.
func DefaultDocument() []byte {
	return append([]byte(nil), defaultDocument...)
}

// DefaultConfigPath returns <user config dir>/wintile/config.yaml.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(dir, appDirName, configFileName), nil
}

// ScriptPath returns the init.lua path that belongs to a config file.
func ScriptPath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), ScriptFileName)
}

// EnsureFile creates the config directory and seeds the file with the default
// document when it does not exist yet.
func EnsureFile(path string, logger *slog.Logger) (bool, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		logger.Debug("config folder doesn't exist yet, creating it", "dir", dir)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("%s: %w", path, err)
	}

	logger.Debug("config file doesn't exist yet, initializing with default values", "path", path)
	if err := os.WriteFile(path, defaultDocument, 0o644); err != nil {
		return false, fmt.Errorf("failed to write default config: %w", err)
	}
	return true, nil
}

// Load seeds the file if needed, then reads and parses it.
func Load(path string, logger *slog.Logger) (*Config, error) {
	if _, err := EnsureFile(path, logger); err != nil {
		return nil, err
	}
	return LoadFromPath(path, logger)
}

// LoadFromPath reads and parses an existing file.
func LoadFromPath(path string, logger *slog.Logger) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read: %w", path, err)
	}
	return Parse(data, path, logger)
}

// Parse builds a Config from a YAML document. Keys the document omits keep
// their defaults and unknown keys are ignored. Keybindings of an unknown
// type are logged and dropped; any other malformed entry aborts the load.
// When the document is a mapping, app_bar_bg is converted to the platform's
// packed colour format.
func Parse(data []byte, file string, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ValidationError{Source: Source{File: file}, Err: err}
	}
	var raw RawConfig
	mapping := len(doc.Content) > 0 && doc.Content[0].Kind == yaml.MappingNode
	if len(doc.Content) > 0 {
		if err := doc.Decode(&raw); err != nil {
			return nil, &ValidationError{Source: Source{File: file}, Err: err}
		}
	}

	cfg := DefaultConfig()
	applyScalars(cfg, &raw)

	for i, w := range raw.Workspaces {
		ws := WorkspaceSetting{ID: -1, Monitor: -1}
		if w.ID != nil {
			ws.ID = *w.ID
		}
		if w.Monitor != nil {
			ws.Monitor = *w.Monitor
		}
		if ws.ID < 0 {
			return nil, &ValidationError{Path: fmt.Sprintf("workspaces[%d].id", i), Source: Source{File: file}, Err: fmt.Errorf("id is required")}
		}
		cfg.Workspaces = append(cfg.Workspaces, ws)
	}

	for i := range raw.Rules {
		r, err := parseRule(&raw.Rules[i])
		if err != nil {
			return nil, nodeError(file, fmt.Sprintf("rules[%d]", i), &raw.Rules[i], err)
		}
		cfg.Rules = append(cfg.Rules, r)
	}

	for i := range raw.Keybindings {
		node := &raw.Keybindings[i]
		kb, err := parseKeybinding(node)
		if errors.Is(err, binding.ErrUnknownAction) {
			logger.Error("dropping keybinding", "file", file, "line", node.Line, "error", err)
			continue
		}
		if err != nil {
			return nil, nodeError(file, fmt.Sprintf("keybindings[%d]", i), node, err)
		}
		if !fieldAllowed(kb.Action) {
			logger.Warn("keybinding targets an unknown config field", "file", file, "line", node.Line, "action", kb.Action.String())
		}
		cfg.Keybindings = append(cfg.Keybindings, kb)
	}

	// Only a parsed mapping is converted; an empty document keeps the
	// defaults as they are.
	if mapping {
		cfg.AppBarBg = SwapRB(cfg.AppBarBg)
	}

	if err := cfg.Validate(); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			verr.Source.File = file
		}
		return nil, err
	}
	return cfg, nil
}

func fieldAllowed(a binding.Action) bool {
	switch a.Kind {
	case binding.IncrementConfig, binding.DecrementConfig:
		return IsNumericField(a.Field)
	case binding.ToggleConfig:
		return IsToggleField(a.Field)
	}
	return true
}

func nodeError(file, path string, node *yaml.Node, err error) error {
	return &ValidationError{
		Path:   path,
		Source: Source{File: file, Line: node.Line, Column: node.Column},
		Err:    err,
	}
}

func applyScalars(cfg *Config, raw *RawConfig) {
	setInt := func(dst *int32, src *int32) {
		if src != nil {
			*dst = *src
		}
	}
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}

	setInt(&cfg.AppBarHeight, raw.AppBarHeight)
	if raw.AppBarBg != nil {
		cfg.AppBarBg = int32(*raw.AppBarBg)
	}
	setString(&cfg.AppBarFont, raw.AppBarFont)
	setInt(&cfg.AppBarFontSize, raw.AppBarFontSize)
	setString(&cfg.AppBarDatePattern, raw.AppBarDatePattern)
	setString(&cfg.AppBarTimePattern, raw.AppBarTimePattern)
	setBool(&cfg.UseBorder, raw.UseBorder)
	setInt(&cfg.MinWidth, raw.MinWidth)
	setInt(&cfg.MinHeight, raw.MinHeight)
	setBool(&cfg.WorkMode, raw.WorkMode)
	setBool(&cfg.LightTheme, raw.LightTheme)
	setBool(&cfg.MultiMonitor, raw.MultiMonitor)
	setBool(&cfg.LaunchOnStartup, raw.LaunchOnStartup)
	setInt(&cfg.Margin, raw.Margin)
	setInt(&cfg.Padding, raw.Padding)
	setBool(&cfg.RemoveTitleBar, raw.RemoveTitleBar)
	setBool(&cfg.RemoveTaskBar, raw.RemoveTaskBar)
	setBool(&cfg.DisplayAppBar, raw.DisplayAppBar)
	setString(&cfg.LogLevel, raw.LogLevel)
}

func parseRule(node *yaml.Node) (rules.Rule, error) {
	if node.Kind != yaml.MappingNode {
		return rules.Rule{}, fmt.Errorf("rule must be a mapping")
	}
	var raw RawRule
	if err := node.Decode(&raw); err != nil {
		return rules.Rule{}, err
	}

	r := rules.Default()
	var err error
	switch {
	case raw.Pattern != nil && raw.Glob != nil:
		return rules.Rule{}, fmt.Errorf("pattern and glob are mutually exclusive")
	case raw.Pattern != nil:
		r.Pattern, err = rules.CompileRegex(*raw.Pattern)
	case raw.Glob != nil:
		r.Pattern, err = rules.CompileGlob(*raw.Glob)
	default:
		return rules.Rule{}, fmt.Errorf("pattern is required")
	}
	if err != nil {
		return rules.Rule{}, err
	}

	if raw.HasCustomTitlebar != nil {
		r.HasCustomTitlebar = *raw.HasCustomTitlebar
	}
	if raw.Manage != nil {
		r.Manage = *raw.Manage
	}
	if raw.Chromium != nil {
		r.Chromium = *raw.Chromium
	}
	if raw.Firefox != nil {
		r.Firefox = *raw.Firefox
	}
	if raw.RemoveFrame != nil {
		r.RemoveFrame = *raw.RemoveFrame
	}
	if raw.Workspace != nil {
		r.Workspace = *raw.Workspace
	}
	return r, nil
}

func parseKeybinding(node *yaml.Node) (binding.Keybinding, error) {
	if node.Kind != yaml.MappingNode {
		return binding.Keybinding{}, fmt.Errorf("keybinding must be a mapping")
	}
	var raw RawKeybinding
	if err := node.Decode(&raw); err != nil {
		return binding.Keybinding{}, err
	}
	if raw.Type == nil {
		return binding.Keybinding{}, fmt.Errorf("type is required")
	}
	if raw.Key == nil {
		return binding.Keybinding{}, fmt.Errorf("key is required")
	}

	kind, err := binding.ParseKind(*raw.Type)
	if err != nil {
		return binding.Keybinding{}, err
	}
	chord, err := binding.ParseChord(*raw.Key)
	if err != nil {
		return binding.Keybinding{}, err
	}

	action, err := actionFromRaw(kind, &raw)
	if err != nil {
		return binding.Keybinding{}, fmt.Errorf("keybinding of type %s: %w", kind, err)
	}
	return binding.Keybinding{Chord: chord, Action: action}, nil
}

func actionFromRaw(kind binding.Kind, raw *RawKeybinding) (binding.Action, error) {
	a := binding.Action{Kind: kind}

	needString := func(name string, v *string) (string, error) {
		if v == nil {
			return "", fmt.Errorf("%s is required", name)
		}
		return *v, nil
	}
	needInt := func(name string, v *int32) (int32, error) {
		if v == nil {
			return 0, fmt.Errorf("%s is required", name)
		}
		return *v, nil
	}

	var err error
	switch kind {
	case binding.Launch:
		a.Command, err = needString("cmd", raw.Cmd)
	case binding.ChangeWorkspace, binding.MoveToWorkspace:
		a.ID, err = needInt("id", raw.ID)
	case binding.MoveWorkspaceToMonitor:
		a.Monitor, err = needInt("monitor", raw.Monitor)
	case binding.IncrementConfig, binding.DecrementConfig:
		if a.Field, err = needString("field", raw.Field); err == nil {
			a.Value, err = needInt("value", raw.Value)
		}
	case binding.ToggleConfig:
		a.Field, err = needString("field", raw.Field)
	case binding.Focus, binding.Swap, binding.Resize:
		var dir string
		if dir, err = needString("direction", raw.Direction); err == nil {
			a.Direction, err = binding.ParseDirection(dir)
		}
		if err == nil && kind == binding.Resize {
			a.Amount, err = needInt("amount", raw.Amount)
		}
	case binding.Split:
		var dir string
		if dir, err = needString("direction", raw.Direction); err == nil {
			a.Split, err = binding.ParseSplitDirection(dir)
		}
	}
	return a, err
}
