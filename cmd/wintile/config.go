package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/wintile/internal/config"
	"github.com/1broseidon/wintile/internal/ipc"
)

func newConfigCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration or change it in the running daemon",
	}
	cmd.AddCommand(newConfigPathCmd(opts))
	cmd.AddCommand(newConfigValidateCmd(opts))
	cmd.AddCommand(newConfigPrintCmd(opts))
	cmd.AddCommand(newConfigAlterCmd(opts, ipc.OpIncrement))
	cmd.AddCommand(newConfigAlterCmd(opts, ipc.OpDecrement))
	cmd.AddCommand(newConfigAlterCmd(opts, ipc.OpToggle))
	return cmd
}

func newConfigPathCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.resolveConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newConfigValidateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.resolveConfigPath()
			if err != nil {
				return err
			}
			logger, err := opts.logger(cmd.ErrOrStderr(), "warn")
			if err != nil {
				return err
			}
			cfg, err := config.LoadFromPath(path, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config: ok (%d rules, %d keybindings)\n", len(cfg.Rules), len(cfg.Keybindings))
			return nil
		},
	}
}

func newConfigPrintCmd(opts *globalOptions) *cobra.Command {
	var defaults bool
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if defaults {
				_, err := cmd.OutOrStdout().Write(config.DefaultDocument())
				return err
			}
			path, err := opts.resolveConfigPath()
			if err != nil {
				return err
			}
			logger, err := opts.logger(cmd.ErrOrStderr(), "warn")
			if err != nil {
				return err
			}
			cfg, err := config.LoadFromPath(path, logger)
			if err != nil {
				return err
			}
			return printConfig(cmd.OutOrStdout(), path, cfg)
		},
	}
	cmd.Flags().BoolVar(&defaults, "defaults", false, "print the document written on first run")
	return cmd
}

type printedKeybinding struct {
	Key    string `yaml:"key"`
	Action string `yaml:"action"`
}

type printedRule struct {
	Pattern     string `yaml:"pattern"`
	Manage      bool   `yaml:"manage"`
	RemoveFrame bool   `yaml:"remove_frame"`
	Workspace   int32  `yaml:"workspace"`
	Chromium    bool   `yaml:"chromium,omitempty"`
	Firefox     bool   `yaml:"firefox,omitempty"`
	CustomTitle bool   `yaml:"has_custom_titlebar,omitempty"`
}

func printConfig(w io.Writer, path string, cfg *config.Config) error {
	out := cfg.Clone()
	out.AppBarBg = config.SwapRB(out.AppBarBg)

	data, err := yaml.Marshal(out)
	if err != nil {
		return err
	}

	extra := struct {
		Rules       []printedRule       `yaml:"rules,omitempty"`
		Keybindings []printedKeybinding `yaml:"keybindings,omitempty"`
	}{}
	for _, r := range cfg.Rules {
		extra.Rules = append(extra.Rules, printedRule{
			Pattern:     fmt.Sprint(r.Pattern),
			Manage:      r.Manage,
			RemoveFrame: r.RemoveFrame,
			Workspace:   r.Workspace,
			Chromium:    r.Chromium,
			Firefox:     r.Firefox,
			CustomTitle: r.HasCustomTitlebar,
		})
	}
	for _, kb := range cfg.Keybindings {
		extra.Keybindings = append(extra.Keybindings, printedKeybinding{Key: kb.Chord.String(), Action: kb.Action.String()})
	}
	more, err := yaml.Marshal(extra)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "# effective configuration of %s\n", path)
	if _, err := w.Write(data); err != nil {
		return err
	}
	if len(extra.Rules) > 0 || len(extra.Keybindings) > 0 {
		_, err = w.Write(more)
	}
	return err
}

func newConfigAlterCmd(opts *globalOptions, op string) *cobra.Command {
	use := op + " <field> <value>"
	short := fmt.Sprintf("%s a numeric field in the running daemon", op)
	nargs := cobra.ExactArgs(2)
	if op == ipc.OpToggle {
		use = op + " <field>"
		short = "Toggle a boolean field in the running daemon"
		nargs = cobra.ExactArgs(1)
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  nargs,
		RunE: func(cmd *cobra.Command, args []string) error {
			field := args[0]
			var value int32
			if op != ipc.OpToggle {
				n, err := strconv.ParseInt(args[1], 10, 32)
				if err != nil {
					return fmt.Errorf("value must be an integer: %w", err)
				}
				value = int32(n)
			}
			res, err := opts.client().AlterConfig(op, field, value)
			if err != nil {
				return err
			}
			if !res.Applied {
				slog.Warn("config change not applied", "field", field, "reason", res.Reason)
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: not applied (%s)\n", op, field, res.Reason)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: applied\n", op, field)
			return nil
		},
	}
}
