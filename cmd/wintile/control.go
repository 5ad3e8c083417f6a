package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/1broseidon/wintile/internal/bar"
	"github.com/1broseidon/wintile/internal/ipc"
)

func newStatusCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := opts.client().GetStatus()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), status)
			}
			printStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printStatus(w io.Writer, status *ipc.StatusData) {
	fmt.Fprintf(w, "daemon_running:   %v\n", status.DaemonRunning)
	fmt.Fprintf(w, "work_mode:        %v\n", status.WorkMode)
	fmt.Fprintf(w, "active_workspace: %d\n", status.ActiveWorkspace)
	fmt.Fprintf(w, "window_count:     %d\n", status.WindowCount)
	fmt.Fprintf(w, "keybindings:      %d\n", status.Keybindings)
	fmt.Fprintf(w, "config_path:      %s\n", status.ConfigPath)
	fmt.Fprintf(w, "uptime_seconds:   %d\n", status.UptimeSeconds)
}

func newToggleCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Toggle work mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := opts.client().ToggleWorkMode()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "work_mode: %v\n", on)
			return nil
		},
	}
}

func newReloadCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Reload config.yaml and init.lua in the running daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.client().Reload(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "config: reloaded")
			return nil
		},
	}
}

func newWindowsCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "windows",
		Short: "List managed windows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := opts.client().ListWindows()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), data)
			}
			fmt.Fprintln(cmd.OutOrStdout(), windowsTable(data.Windows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func windowsTable(windows []ipc.WindowInfo) string {
	if len(windows) == 0 {
		return "no managed windows"
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("HANDLE", "WS", "PROCESS", "TITLE", "STATE")
	for _, w := range windows {
		state := "tiled"
		switch {
		case w.Fullscreen:
			state = "fullscreen"
		case w.Floating:
			state = "floating"
		}
		t.Row(w.Handle, strconv.Itoa(int(w.Workspace)), w.Process, truncate(w.Title, 40), state)
	}
	return t.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func newBarCmd(opts *globalOptions) *cobra.Command {
	var (
		width int
		plain bool
		click string
		index int
	)
	cmd := &cobra.Command{
		Use:   "bar",
		Short: "Preview the app bar, or click one of its segments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := opts.client()
			if click != "" {
				return client.ClickBar(click, index)
			}
			data, err := client.GetBar()
			if err != nil {
				return err
			}
			if plain {
				fmt.Fprintln(cmd.OutOrStdout(), bar.PlainText(data.Snapshot))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), bar.Preview(data.Snapshot, bar.Theme{Background: data.Background, Light: data.LightTheme}, width))
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 80, "preview width in cells")
	cmd.Flags().BoolVar(&plain, "plain", false, "print the bar text without colours")
	cmd.Flags().StringVar(&click, "click", "", "click a segment of this component instead of printing")
	cmd.Flags().IntVar(&index, "index", 0, "segment index for --click")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
