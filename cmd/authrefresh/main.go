// authrefresh refreshes the cached login state for one environment. It is the
// standalone entrypoint for CI pipelines that warm the credential cache before
// the suites run.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tongthuyhang/manabie-auto-testing/internal/auth"
	"github.com/tongthuyhang/manabie-auto-testing/internal/browser"
	"github.com/tongthuyhang/manabie-auto-testing/internal/common"
	"github.com/tongthuyhang/manabie-auto-testing/internal/identity"
	"github.com/tongthuyhang/manabie-auto-testing/internal/models"
	"github.com/tongthuyhang/manabie-auto-testing/internal/storage/statefile"
)

var (
	configFile = flag.String("config", "autotest.toml", "Configuration file path")
	envName    = flag.String("env", "", "Target environment name (overrides config)")
	userType   = flag.String("user", "", "User type to log in as (overrides config)")
	force      = flag.Bool("force", false, "Refresh even when the cached record is still usable")
)

func main() {
	flag.Parse()

	config, err := common.LoadFromFiles(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *envName != "" {
		config.Environment = *envName
	}
	if *userType != "" {
		config.Auth.UserType = *userType
	}

	logger := common.InitLogger(config)

	if err := config.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("Configuration is invalid")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := statefile.NewStore(config.Auth.StorageDir, logger)
	maxAge := config.Auth.MaxAge()
	if *force {
		// A zero age cap marks every existing record stale.
		maxAge = 0
	}

	refresh, err := auth.ShouldRefresh(store, config.Environment, time.Now(), maxAge)
	if err != nil {
		logger.Fatal().Err(err).Str("environment", config.Environment).Msg("Cached record is unreadable")
		os.Exit(1)
	}
	if !refresh {
		logger.Info().Str("environment", config.Environment).Msg("Cached credentials are usable, nothing to do")
		return
	}

	session, err := browser.NewSession(ctx, browser.SessionOptions{
		Headless: config.Auth.Headless,
		Timeout:  config.Auth.LoginTimeout() + time.Minute,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to start browser")
		os.Exit(1)
	}
	defer session.Close()

	driver, err := browser.NewDriver(session, config.Locators.Dir, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build login driver")
		os.Exit(1)
	}

	orchestrator := auth.NewOrchestrator(store, driver, identity.NewConfigSource(config), logger,
		auth.WithLockDir(config.Auth.StorageDir),
		auth.WithLoginTimeout(config.Auth.LoginTimeout()),
	)

	if err := orchestrator.EnsureValidCredentials(ctx, config.Environment, models.UserType(config.Auth.UserType), maxAge); err != nil {
		logger.Fatal().Err(err).
			Str("environment", config.Environment).
			Str("user_type", config.Auth.UserType).
			Msg("Credential refresh failed")
		os.Exit(1)
	}

	logger.Info().
		Str("environment", config.Environment).
		Str("path", store.Path(config.Environment)).
		Msg("Credential record refreshed")
}
