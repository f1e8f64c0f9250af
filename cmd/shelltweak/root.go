package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/1broseidon/shelltweak/internal/actionlog"
	"github.com/1broseidon/shelltweak/internal/config"
	"github.com/1broseidon/shelltweak/internal/shell"
	"github.com/1broseidon/shelltweak/internal/store"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "shelltweak",
		Short: "Preview and manage desktop panel and dock placement",
		Long: `shelltweak resolves where a desktop panel and dock sit on screen, previews
the result, and keeps named layouts and settings snapshots for the shell.

Run without a command to open the interactive editor.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{Prefix: "shelltweak"})
			if opts.verbose {
				logger.SetLevel(log.DebugLevel)
			}
			cmd.SetContext(log.WithContext(commandContext(cmd), logger))
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/shelltweak/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newTUICmd(opts),
		newResolveCmd(opts),
		newPreviewCmd(opts),
		newDetectCmd(opts),
		newLayoutCmd(opts),
		newSnapshotCmd(opts),
		newConfigCmd(opts),
		newPickCmd(opts),
		newDaemonCmd(opts),
		newMCPCmd(opts),
	)
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// loggerFrom returns the logger installed by the root command.
func loggerFrom(cmd *cobra.Command) *log.Logger {
	return log.FromContext(commandContext(cmd))
}

// path returns --config or the default location.
func (o *rootOptions) path() (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	return config.DefaultConfigPath()
}

// loadConfig loads the effective config and applies its log level unless
// --verbose already raised it.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.LoadResult, error) {
	path, err := opts.path()
	if err != nil {
		return nil, err
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	if !opts.verbose {
		setLogLevel(loggerFrom(cmd), res.Config.LogLevel)
	}
	return res, nil
}

func setLogLevel(logger *log.Logger, level string) {
	if level == "warning" {
		level = "warn"
	}
	if lvl, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
}

// app bundles what the store-backed commands need.
type app struct {
	res     *config.LoadResult
	cfg     *config.Config
	repo    store.Repository
	bridge  *store.Bridge
	actions *actionlog.Logger
	logger  *log.Logger
}

// openApp loads the config and wires the repository, shell engine and
// action log into a bridge.
func openApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	res, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, err
	}
	return openAppWith(res, loggerFrom(cmd))
}

func openAppWith(res *config.LoadResult, logger *log.Logger) (*app, error) {
	cfg := res.Config
	dir, err := cfg.DataDir()
	if err != nil {
		return nil, err
	}
	repo, err := store.Open(cfg.Store.Backend, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}

	engine, err := newEngine(cfg, logger)
	if err != nil {
		repo.Close()
		return nil, err
	}

	alCfg, err := cfg.GetActionLogConfig()
	if err != nil {
		repo.Close()
		return nil, err
	}
	actions, err := actionlog.New(alCfg)
	if err != nil {
		logger.Warn("action log disabled", "err", err)
		actions = nil
	}

	bridge := store.NewBridge(repo, engine, store.Options{
		Presets:            cfg.Layouts,
		Logger:             logger.WithPrefix("store"),
		Actions:            actions,
		AutoSnapshot:       cfg.Store.AutoSnapshot,
		MaxSystemSnapshots: cfg.Store.MaxSystemSnapshots,
	})
	return &app{
		res:     res,
		cfg:     cfg,
		repo:    repo,
		bridge:  bridge,
		actions: actions,
		logger:  logger,
	}, nil
}

// Close releases the repository and the action log.
func (a *app) Close() error {
	err := a.repo.Close()
	if a.actions != nil {
		if cerr := a.actions.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func newEngine(cfg *config.Config, logger *log.Logger) (shell.Engine, error) {
	detected := config.DetectEngine(cfg)
	logger.Debug("shell engine", "engine", detected.Name, "reason", detected.Reason)
	if detected.Name == config.EngineDconf {
		return shell.NewDconfEngine(cfg.Shell.DconfPath), nil
	}
	path, err := cfg.SettingsFile()
	if err != nil {
		return nil, err
	}
	return shell.NewFileEngine(path), nil
}

// fileLogger opens path for the TUI's diagnostics. An empty path discards
// them since the terminal belongs to the TUI.
func fileLogger(path string, level log.Level) (*log.Logger, io.Closer, error) {
	if path == "" {
		logger := log.New(io.Discard)
		return logger, io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	logger := log.NewWithOptions(f, log.Options{ReportTimestamp: true, Prefix: "shelltweak"})
	logger.SetLevel(level)
	return logger, f, nil
}
