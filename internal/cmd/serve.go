package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"file-utils-server/internal/logging"
	"file-utils-server/internal/transport"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	lockCleanupInterval = 5 * time.Minute
	staleLockAge        = time.Hour
)

// NewServeCommand creates the 'file-utils serve' command
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the file utilities over HTTP or stdio JSON-RPC",
		Long: `Start the server in the configured working directory.

The http transport exposes POST /resolve_name, /list, /hash_file and /backup_file
plus GET /health and /metrics. The stdio transport reads one JSON-RPC 2.0 request
per line from stdin, answers on stdout and also speaks the MCP tool methods.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("transport", "", "transport: http or stdio")
	cmd.Flags().Int("port", 0, "HTTP port")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("transport") {
		cfg.Transport, _ = cmd.Flags().GetString("transport")
	}
	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logging.Sync() }()

	logger := logging.L()
	logger.Info("effective configuration",
		zap.String("working_directory", a.service.WorkingDirectory()),
		zap.String("transport", cfg.Transport),
		zap.Int("port", cfg.Port),
		zap.Int("max_name_attempts", cfg.MaxNameAttempts),
		zap.Bool("detect_cycles", cfg.DetectCycles),
		zap.String("default_hash_algorithm", cfg.DefaultHashAlgorithm),
		zap.String("lock_dir", a.locks.LockDir()),
		zap.Duration("lock_timeout", cfg.LockTimeout),
		zap.Duration("operation_timeout", cfg.OperationTimeout))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go a.cleanupLocks(ctx)

	switch cfg.Transport {
	case "http":
		return a.serveHTTP(ctx)
	case "stdio":
		err := transport.NewStdioHandler(a.service, Version).Start(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil && ctx.Err() == nil {
			return fmt.Errorf("stdio handler: %w", err)
		}
		logger.Info("stdio transport stopped")
		return nil
	default:
		return fmt.Errorf("unsupported transport %q", cfg.Transport)
	}
}

func (a *app) serveHTTP(ctx context.Context) error {
	logger := logging.L()
	handler := transport.NewHTTPHandler(a.service, Version)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- handler.StartServer(a.cfg.Port, a.cfg.OperationTimeout, a.cfg.OperationTimeout)
	}()

	select {
	case err := <-serverDone:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.OperationTimeout)
	defer cancel()
	if err := handler.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown error", zap.Error(err))
		return err
	}
	return <-serverDone
}

// cleanupLocks removes stale lock files until ctx is done.
func (a *app) cleanupLocks(ctx context.Context) {
	logger := logging.L().Named("lock-cleanup")
	ticker := time.NewTicker(lockCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			removed, err := a.locks.Cleanup(staleLockAge)
			if err != nil {
				logger.Warn("lock cleanup failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				logger.Info("removed stale lock files", zap.Int("count", removed))
			}
		case <-ctx.Done():
			return
		}
	}
}
