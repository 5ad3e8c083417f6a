package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1broseidon/wintile/internal/config"
	"github.com/1broseidon/wintile/internal/daemon"
	"github.com/1broseidon/wintile/internal/platform"
)

func newDaemonCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Start the wintile daemon (foreground)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context(), opts)
		},
	}
}

func runDaemon(ctx context.Context, opts *globalOptions) error {
	path, err := opts.resolveConfigPath()
	if err != nil {
		return err
	}

	// The config file carries the log level, so read it once with a quiet
	// logger before building the real one.
	cfg, err := config.Load(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		return err
	}
	logger, err := opts.logger(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	backend, disconnect, err := platform.NewNativeBackend()
	if err != nil {
		return fmt.Errorf("failed to connect to display: %w", err)
	}
	defer disconnect()

	app, err := daemon.New(daemon.Options{
		ConfigPath: path,
		Backend:    backend,
		Logger:     logger,
		SocketPath: opts.socketPath,
	})
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.Run(ctx)
}
