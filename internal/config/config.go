package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/1broseidon/wintile/internal/binding"
	"github.com/1broseidon/wintile/internal/rules"
)

// WorkspaceSetting pins a workspace to a monitor.
type WorkspaceSetting struct {
	ID      int32 `yaml:"id"`
	Monitor int32 `yaml:"monitor"`
}

// Config represents the wintile configuration.
type Config struct {
	AppBarHeight      int32  `yaml:"app_bar_height"`
	AppBarBg          int32  `yaml:"app_bar_bg"`
	AppBarFont        string `yaml:"app_bar_font"`
	AppBarFontSize    int32  `yaml:"app_bar_font_size"`
	AppBarDatePattern string `yaml:"app_bar_date_pattern"`
	AppBarTimePattern string `yaml:"app_bar_time_pattern"`
	UseBorder         bool   `yaml:"use_border"`
	MinWidth          int32  `yaml:"min_width"`
	MinHeight         int32  `yaml:"min_height"`
	WorkMode          bool   `yaml:"work_mode"`
	LightTheme        bool   `yaml:"light_theme"`
	MultiMonitor      bool   `yaml:"multi_monitor"`
	LaunchOnStartup   bool   `yaml:"launch_on_startup"`
	Margin            int32  `yaml:"margin"`
	Padding           int32  `yaml:"padding"`
	RemoveTitleBar    bool   `yaml:"remove_title_bar"`
	RemoveTaskBar     bool   `yaml:"remove_task_bar"`
	DisplayAppBar     bool   `yaml:"display_app_bar"`
	LogLevel          string `yaml:"log_level"`

	Workspaces  []WorkspaceSetting   `yaml:"workspaces"`
	Keybindings []binding.Keybinding `yaml:"-"`
	Rules       []rules.Rule         `yaml:"-"`
}

// DefaultConfig returns the configuration used for keys the file omits.
func DefaultConfig() *Config {
	return &Config{
		AppBarHeight:      20,
		AppBarBg:          0x2e3440,
		AppBarFont:        "Consolas",
		AppBarFontSize:    18,
		AppBarDatePattern: "%e %b %Y",
		AppBarTimePattern: "%T",
		WorkMode:          true,
		LogLevel:          "info",
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Workspaces = append([]WorkspaceSetting(nil), c.Workspaces...)
	cp.Keybindings = append([]binding.Keybinding(nil), c.Keybindings...)
	cp.Rules = append([]rules.Rule(nil), c.Rules...)
	return &cp
}

// Validate checks values the loader cannot reject while decoding.
func (c *Config) Validate() error {
	if c.AppBarHeight < 0 {
		return &ValidationError{Path: "app_bar_height", Err: fmt.Errorf("app_bar_height must be >= 0")}
	}
	if c.MinWidth < 0 || c.MinHeight < 0 {
		return &ValidationError{Path: "min_width", Err: fmt.Errorf("min_width and min_height must be >= 0")}
	}
	if c.Margin < 0 {
		return &ValidationError{Path: "margin", Err: fmt.Errorf("margin must be >= 0")}
	}
	if c.Padding < 0 {
		return &ValidationError{Path: "padding", Err: fmt.Errorf("padding must be >= 0")}
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return &ValidationError{Path: "log_level", Err: err}
	}
	return nil
}

// ParseLogLevel maps a log_level value onto slog.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log_level must be one of: debug, info, warn, error")
}

var numericFields = map[string]func(*Config) *int32{
	"app_bar_height":    func(c *Config) *int32 { return &c.AppBarHeight },
	"app_bar_bg":        func(c *Config) *int32 { return &c.AppBarBg },
	"app_bar_font_size": func(c *Config) *int32 { return &c.AppBarFontSize },
	"margin":            func(c *Config) *int32 { return &c.Margin },
	"padding":           func(c *Config) *int32 { return &c.Padding },
}

var toggleFields = map[string]func(*Config) *bool{
	"use_border":        func(c *Config) *bool { return &c.UseBorder },
	"light_theme":       func(c *Config) *bool { return &c.LightTheme },
	"launch_on_startup": func(c *Config) *bool { return &c.LaunchOnStartup },
	"remove_title_bar":  func(c *Config) *bool { return &c.RemoveTitleBar },
	"remove_task_bar":   func(c *Config) *bool { return &c.RemoveTaskBar },
	"display_app_bar":   func(c *Config) *bool { return &c.DisplayAppBar },
}

// IsNumericField reports whether name may be incremented or decremented.
func IsNumericField(name string) bool {
	_, ok := numericFields[name]
	return ok
}

// IsToggleField reports whether name may be toggled.
func IsToggleField(name string) bool {
	_, ok := toggleFields[name]
	return ok
}

// IncrementField adds value to an allow-listed numeric field. Unknown names
// leave the config untouched and return an *UnknownFieldError.
func (c *Config) IncrementField(name string, value int32) error {
	return c.alterNumeric("increment", name, value)
}

// DecrementField subtracts value from an allow-listed numeric field.
func (c *Config) DecrementField(name string, value int32) error {
	return c.alterNumeric("decrement", name, -value)
}

func (c *Config) alterNumeric(op, name string, delta int32) error {
	field, ok := numericFields[name]
	if !ok {
		return &UnknownFieldError{Op: op, Field: name}
	}
	*field(c) += delta
	return nil
}

// ToggleField flips an allow-listed boolean field.
func (c *Config) ToggleField(name string) error {
	field, ok := toggleFields[name]
	if !ok {
		return &UnknownFieldError{Op: "toggle", Field: name}
	}
	p := field(c)
	*p = !*p
	return nil
}
