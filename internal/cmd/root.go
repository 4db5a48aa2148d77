package cmd

import (
	"fmt"
	"os"

	"file-utils-server/internal/config"
	"file-utils-server/internal/filesystem"
	"file-utils-server/internal/lock"
	"file-utils-server/internal/logging"
	"file-utils-server/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for file-utils
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file-utils",
		Short: "Collision-free names, listings, hashes and backups",
		Long: `file-utils works inside a single working directory. It finds names that
do not collide with existing entries, lists directories flat, recursively or as
a tree, hashes files and backs them up under free names.

Run "file-utils serve" to expose the same operations over HTTP or stdio JSON-RPC.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "path to a YAML config file")
	flags.String("dir", "", "working directory (overrides working_directory)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: json or console")
	flags.Bool("json", false, "print results as JSON")

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewResolveCommand())
	cmd.AddCommand(NewListCommand())
	cmd.AddCommand(NewHashCommand())
	cmd.AddCommand(NewBackupCommand())
	cmd.AddCommand(NewCopyCommand())
	cmd.AddCommand(NewRenameCommand())
	cmd.AddCommand(NewRemoveCommand())
	cmd.AddCommand(NewExistsCommand())

	return cmd
}

// loadConfig reads --config and applies the persistent flag overrides. The working
// directory defaults to the current directory.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		cfg.WorkingDirectory = dir
	}
	if cfg.WorkingDirectory == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determine working directory: %w", err)
		}
		cfg.WorkingDirectory = wd
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if format, _ := cmd.Flags().GetString("log-format"); format != "" {
		cfg.LogFormat = format
	}
	return cfg, nil
}

// app bundles what every command needs once configuration is settled.
type app struct {
	cfg     *config.Config
	locks   *lock.LockManager
	service *service.DefaultFileUtilityService
}

func newApp(cfg *config.Config) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	if err := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
		return nil, fmt.Errorf("initialize logging: %w", err)
	}

	logger := logging.L()
	locks := lock.NewLockManager(cfg.LockDir, logger.Named("lock"))
	svc, err := service.NewDefaultFileUtilityService(filesystem.NewDefaultFileSystemAdapter(), locks, cfg, logger.Named("service"))
	if err != nil {
		return nil, fmt.Errorf("initialize service: %w", err)
	}
	logger.Debug("service initialized",
		zap.String("working_directory", svc.WorkingDirectory()),
		zap.String("lock_dir", locks.LockDir()))
	return &app{cfg: cfg, locks: locks, service: svc}, nil
}

// setupApp is the common prologue of the one-shot commands.
func setupApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	// One-shot commands only log problems unless asked otherwise.
	if !cmd.Flags().Changed("log-level") {
		cfg.LogLevel = "warn"
	}
	if !cmd.Flags().Changed("log-format") {
		cfg.LogFormat = "console"
	}
	return newApp(cfg)
}
