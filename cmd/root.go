package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/linkedin-outreach/internal/config"
	"github.com/yourusername/linkedin-outreach/internal/logger"
	"github.com/yourusername/linkedin-outreach/internal/session"
	"github.com/yourusername/linkedin-outreach/internal/storage"
)

const defaultExportDir = "./exports"

type rootOptions struct {
	configPath string
	noWait     bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "linkedin-outreach",
		Short: "Quota-aware LinkedIn outreach through a real browser",
		Long: "linkedin-outreach searches people, visits profiles and sends connection requests and messages " +
			"through Chrome, pacing itself like a person and staying under per-account daily limits.\n\n" +
			"Without a subcommand it starts the interactive menu.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInteractive(cmd, opts, "")
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"config file (default $CONFIG_PATH or "+config.DefaultPath+")")
	rootCmd.PersistentFlags().BoolVar(&opts.noWait, "no-wait", false, "skip the start-up countdown")

	rootCmd.AddCommand(
		newInteractiveCmd(opts),
		newAutoCmd(opts),
		newInitConfigCmd(opts),
		newStatsCmd(opts),
		newExportCmd(opts),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "linkedin-outreach %s\n", AppVersion)
		},
	}
}

// app is what every command needs once the configuration is loaded
type app struct {
	cfg   *config.Config
	store *storage.Store
	out   io.Writer

	launch      func(*config.Config) session.Launcher
	sessionOpts []session.Option
	now         func() time.Time
	sleep       func(time.Duration)
	wait        func(context.Context, time.Duration) error
}

// loadApp reads the configuration, starts logging for account and opens
// the database. A database that cannot be opened leaves store nil and the
// run continues with in-memory ledgers.
func loadApp(opts *rootOptions, out io.Writer, account string) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := initLogger(cfg, account); err != nil {
		return nil, err
	}

	logger.Info("Opening database", "path", cfg.Database.Path)
	store, err := storage.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("Failed to open database, counters will not persist", "error", err)
		store = nil
	}

	return &app{
		cfg:    cfg,
		store:  store,
		out:    out,
		launch: session.RodLauncher,
		now:    time.Now,
		sleep:  time.Sleep,
		wait:   sleepCtx,
	}, nil
}

func initLogger(cfg *config.Config, account string) error {
	err := logger.Init(logger.Options{
		Level:    cfg.Logging.Level,
		ToFile:   cfg.Logging.ToFile,
		FilePath: cfg.Logging.FilePath,
		Account:  account,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		logger.Warn("Failed to close database", "error", err)
	}
	_ = logger.Sync()
}

// requireStore fails commands that only make sense with a database
func (a *app) requireStore() error {
	if a.store == nil {
		return fmt.Errorf("database %s is not available", a.cfg.Database.Path)
	}
	return nil
}

// openSession starts one account's session with the app's launcher
func (a *app) openSession(acct config.Account) (*session.Session, error) {
	return session.Open(a.cfg, acct, a.store, a.launch(a.cfg), a.sessionOpts...)
}

// pickAccount returns the named account, or the first one when name is empty
func pickAccount(cfg *config.Config, name string) (config.Account, error) {
	if name == "" {
		if len(cfg.Accounts) == 0 {
			return config.Account{}, fmt.Errorf("no accounts configured")
		}
		return cfg.Accounts[0], nil
	}
	acct, ok := cfg.Account(name)
	if !ok {
		return config.Account{}, fmt.Errorf("account %q not found in configuration", name)
	}
	return acct, nil
}
