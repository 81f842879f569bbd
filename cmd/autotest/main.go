package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/tongthuyhang/manabie-auto-testing/internal/auth"
	"github.com/tongthuyhang/manabie-auto-testing/internal/browser"
	"github.com/tongthuyhang/manabie-auto-testing/internal/common"
	"github.com/tongthuyhang/manabie-auto-testing/internal/identity"
	"github.com/tongthuyhang/manabie-auto-testing/internal/models"
	"github.com/tongthuyhang/manabie-auto-testing/internal/qase"
	"github.com/tongthuyhang/manabie-auto-testing/internal/runner"
	badgerstore "github.com/tongthuyhang/manabie-auto-testing/internal/storage/badger"
	"github.com/tongthuyhang/manabie-auto-testing/internal/storage/statefile"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths
	envName      = flag.String("env", "", "Target environment name (overrides config)")
	scheduleExpr = flag.String("schedule", "", "Cron schedule for repeated runs (overrides config)")
	runOnce      = flag.Bool("once", false, "Run the suites once and exit, ignoring any schedule")
	showVersion  = flag.Bool("version", false, "Print version information")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("Manabie AutoTest version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("autotest.toml"); err == nil {
			configFiles = append(configFiles, "autotest.toml")
		}
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		common.GetLogger().Fatal().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}
	if *envName != "" {
		config.Environment = *envName
	}
	if *scheduleExpr != "" {
		config.Runner.Schedule = *scheduleExpr
	}

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	if err := config.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("Configuration is invalid")
		os.Exit(1)
	}

	logger.Info().
		Strs("config_files", configFiles).
		Str("environment", config.Environment).
		Int("suites", len(config.Runner.Suites)).
		Msg("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := badgerstore.NewDB(logger, &config.Storage.Badger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open run-history database")
		os.Exit(1)
	}
	store := badgerstore.NewRunStorage(db, logger)
	defer store.Close()

	// Periodic value-log GC keeps the run-history database compact across
	// long scheduled sessions.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := db.RunGC(); err != nil {
					logger.Warn().Err(err).Msg("Database garbage collection failed")
				}
			}
		}
	}()

	reporter := buildReporter(config, logger)

	var server *runner.Server
	if config.Server.Enabled {
		server = runner.NewServer(&config.Server, store, logger)
		if err := server.Start(); err != nil {
			logger.Warn().Err(err).Msg("Status server failed to start")
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				server.Stop(shutdownCtx)
			}()
		}
	}

	r := runner.New(config, logger, store, reporter, server, ensureCredentials(config, logger))

	if server != nil {
		broadcaster, err := runner.NewLogBroadcaster(server, config.Logging.Level)
		if err != nil {
			logger.Warn().Err(err).Msg("Live log broadcast disabled")
		} else {
			defer broadcaster.Close()
			r.SetLogStream(broadcaster)
		}
	}

	if config.Runner.Schedule != "" && !*runOnce {
		if err := r.RunScheduled(ctx, config.Runner.Schedule); err != nil && err != context.Canceled {
			logger.Fatal().Err(err).Msg("Scheduled mode failed")
			os.Exit(1)
		}
		return
	}

	run, err := r.RunOnce(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("Run failed")
		os.Exit(1)
	}
	logger.Info().
		Str("run_id", run.ID).
		Str("status", run.Status).
		Int("passed", run.Passed).
		Int("failed", run.Failed).
		Msg("Run complete")
	if run.Status == models.StatusFailed {
		os.Exit(1)
	}
}

func buildReporter(config *common.Config, logger arbor.ILogger) *qase.Reporter {
	token := config.Qase.QaseToken()
	if token == "" || config.Qase.ProjectCode == "" {
		logger.Info().Msg("Qase reporting disabled (no API token or project code)")
		return qase.NewReporter(nil, logger)
	}
	client := qase.NewClient(token, config.Qase.ProjectCode,
		qase.WithBaseURL(config.Qase.BaseURL),
		qase.WithRateLimit(config.Qase.RateLimit),
		qase.WithLogger(logger),
	)
	return qase.NewReporter(client, logger)
}

// ensureCredentials returns the refresh hook the runner calls before any
// suite starts. The browser only launches when the cached record is missing,
// stale, or carries an expired cookie; the usable-record path stays
// browser-free.
func ensureCredentials(config *common.Config, logger arbor.ILogger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		store := statefile.NewStore(config.Auth.StorageDir, logger)

		refresh, err := auth.ShouldRefresh(store, config.Environment, time.Now(), config.Auth.MaxAge())
		if err != nil {
			return err
		}
		if !refresh {
			logger.Info().Str("environment", config.Environment).Msg("Cached credentials are usable")
			return nil
		}

		session, err := browser.NewSession(ctx, browser.SessionOptions{
			Headless: config.Auth.Headless,
			Timeout:  config.Auth.LoginTimeout() + time.Minute,
		}, logger)
		if err != nil {
			return err
		}
		defer session.Close()

		driver, err := browser.NewDriver(session, config.Locators.Dir, logger)
		if err != nil {
			return err
		}

		orchestrator := auth.NewOrchestrator(store, driver, identity.NewConfigSource(config), logger,
			auth.WithLockDir(config.Auth.StorageDir),
			auth.WithLoginTimeout(config.Auth.LoginTimeout()),
		)
		return orchestrator.EnsureValidCredentials(ctx, config.Environment, models.UserType(config.Auth.UserType), config.Auth.MaxAge())
	}
}
