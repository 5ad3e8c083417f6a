package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/1broseidon/wintile/internal/config"
	"github.com/1broseidon/wintile/internal/ipc"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	logLevel   string
	socketPath string
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "wintile",
		Short: "A tiling window manager for native desktop windows",
		Long: `wintile tiles the top-level windows of other programs into a grid.

Run 'wintile daemon' to start managing windows, then control the running
daemon with the other commands or through 'wintile mcp serve'.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is <user config dir>/wintile/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error (default from log_level)")
	rootCmd.PersistentFlags().StringVar(&opts.socketPath, "socket", "", "control socket path (default $XDG_RUNTIME_DIR/wintile.sock)")

	rootCmd.AddCommand(newDaemonCmd(opts))
	rootCmd.AddCommand(newStatusCmd(opts))
	rootCmd.AddCommand(newToggleCmd(opts))
	rootCmd.AddCommand(newReloadCmd(opts))
	rootCmd.AddCommand(newWindowsCmd(opts))
	rootCmd.AddCommand(newBarCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newMCPCmd(opts))

	return rootCmd
}

func (o *globalOptions) resolveConfigPath() (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	return config.DefaultConfigPath()
}

func (o *globalOptions) client() *ipc.Client {
	if o.socketPath != "" {
		return ipc.NewClientAt(o.socketPath)
	}
	return ipc.NewClient()
}

// logger builds the process logger. The --log-level flag wins over the
// config file's log_level.
func (o *globalOptions) logger(w io.Writer, configured string) (*slog.Logger, error) {
	levelName := configured
	if o.logLevel != "" {
		levelName = o.logLevel
	}
	level, err := config.ParseLogLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", levelName, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}
