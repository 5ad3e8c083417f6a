package config

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// RawConfig mirrors the YAML document. Pointer fields distinguish "absent"
// from the zero value so defaults survive.
type RawConfig struct {
	AppBarHeight      *int32    `yaml:"app_bar_height"`
	AppBarBg          *RawColor `yaml:"app_bar_bg"`
	AppBarFont        *string   `yaml:"app_bar_font"`
	AppBarFontSize    *int32    `yaml:"app_bar_font_size"`
	AppBarDatePattern *string   `yaml:"app_bar_date_pattern"`
	AppBarTimePattern *string   `yaml:"app_bar_time_pattern"`
	UseBorder         *bool     `yaml:"use_border"`
	MinWidth          *int32    `yaml:"min_width"`
	MinHeight         *int32    `yaml:"min_height"`
	WorkMode          *bool     `yaml:"work_mode"`
	LightTheme        *bool     `yaml:"light_theme"`
	MultiMonitor      *bool     `yaml:"multi_monitor"`
	LaunchOnStartup   *bool     `yaml:"launch_on_startup"`
	Margin            *int32    `yaml:"margin"`
	Padding           *int32    `yaml:"padding"`
	RemoveTitleBar    *bool     `yaml:"remove_title_bar"`
	RemoveTaskBar     *bool     `yaml:"remove_task_bar"`
	DisplayAppBar     *bool     `yaml:"display_app_bar"`
	LogLevel          *string   `yaml:"log_level"`

	Workspaces  []RawWorkspace `yaml:"workspaces"`
	Rules       []yaml.Node    `yaml:"rules"`
	Keybindings []yaml.Node    `yaml:"keybindings"`
}

type RawWorkspace struct {
	ID      *int32 `yaml:"id"`
	Monitor *int32 `yaml:"monitor"`
}

type RawRule struct {
	Pattern           *string `yaml:"pattern"`
	Glob              *string `yaml:"glob"`
	HasCustomTitlebar *bool   `yaml:"has_custom_titlebar"`
	Manage            *bool   `yaml:"manage"`
	Chromium          *bool   `yaml:"chromium"`
	Firefox           *bool   `yaml:"firefox"`
	RemoveFrame       *bool   `yaml:"remove_frame"`
	Workspace         *int32  `yaml:"workspace"`
}

type RawKeybinding struct {
	Type      *string `yaml:"type"`
	Key       *string `yaml:"key"`
	Cmd       *string `yaml:"cmd"`
	ID        *int32  `yaml:"id"`
	Monitor   *int32  `yaml:"monitor"`
	Field     *string `yaml:"field"`
	Value     *int32  `yaml:"value"`
	Direction *string `yaml:"direction"`
	Amount    *int32  `yaml:"amount"`
}

// RawColor accepts either an integer such as 0x2e3440 or a "#2e3440" string.
// The value is always 0xRRGGBB.
type RawColor int32

func (c *RawColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode && value.Tag == "!!str" {
		rgb, err := ParseHexColor(value.Value)
		if err != nil {
			return err
		}
		*c = RawColor(rgb)
		return nil
	}
	var n int32
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("colour must be an integer or a \"#rrggbb\" string: %w", err)
	}
	*c = RawColor(n)
	return nil
}

// ParseHexColor parses "#rrggbb" into 0xRRGGBB.
func ParseHexColor(s string) (int32, error) {
	col, err := colorful.Hex(s)
	if err != nil {
		return 0, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	r, g, b := col.RGB255()
	return int32(r)<<16 | int32(g)<<8 | int32(b), nil
}

// SwapRB converts between 0xRRGGBB and the platform's packed 0x00BBGGRR.
// Applying it twice returns the original value.
func SwapRB(v int32) int32 {
	r := (v >> 16) & 0xff
	g := (v >> 8) & 0xff
	b := v & 0xff
	return b<<16 | g<<8 | r
}
