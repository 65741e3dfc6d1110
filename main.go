// Package main is the entry point for the finance tracker.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gitlab.com/yelinaung/finance-tracker/internal/config"
	"gitlab.com/yelinaung/finance-tracker/internal/currency"
	"gitlab.com/yelinaung/finance-tracker/internal/database"
	"gitlab.com/yelinaung/finance-tracker/internal/exchange"
	"gitlab.com/yelinaung/finance-tracker/internal/history"
	"gitlab.com/yelinaung/finance-tracker/internal/localstore"
	"gitlab.com/yelinaung/finance-tracker/internal/logger"
	"gitlab.com/yelinaung/finance-tracker/internal/repository"
	"gitlab.com/yelinaung/finance-tracker/internal/store"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rateRefreshInterval is how often exchange rates are refreshed.
const rateRefreshInterval = time.Hour

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("finance-tracker %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.SetLevel(cfg.LogLevel)
	logger.InitHashSalt()

	local, err := localstore.New(cfg.LocalDataDir)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to open local store")
	}

	var storeRepos store.Repos
	var histRepos history.Repos
	remoteReady := false

	if cfg.RemoteEnabled() {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Database unreachable, degrading to local-only mode")
		} else {
			defer pool.Close()
			if err := database.RunMigrations(ctx, pool); err != nil {
				logger.Log.Fatal().Err(err).Msg("Failed to run migrations")
			}
			storeRepos = store.Repos{
				Transactions: repository.NewTransactionRepository(pool),
				Goals:        repository.NewGoalRepository(pool),
				Settings:     repository.NewSettingsRepository(pool),
			}
			histRepos = history.Repos{
				Snapshots:     repository.NewSnapshotRepository(pool),
				RestorePoints: repository.NewRestorePointRepository(pool),
			}
			remoteReady = true
			logger.Log.Info().Msg("Database initialized successfully")
		}
	} else {
		logger.Log.Info().Msg("No DATABASE_URL configured, running in local-only mode")
	}

	session := store.Session{
		UserID:        cfg.UserID,
		Authenticated: cfg.UserID != "" && remoteReady,
	}

	fin := store.New(session, storeRepos, local)
	hist := history.New(session, histRepos, local)
	fin.SetRecorder(hist)
	hist.SetDataStore(fin)

	if err := fin.Reload(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load finance data")
	}
	if err := hist.RefreshCache(ctx); err != nil {
		logger.Log.Warn().Err(err).Msg("Failed to load history cache")
	}

	if deleted, err := hist.CleanupOldVersions(ctx, cfg.SnapshotRetentionDays); err != nil {
		logger.Log.Warn().Err(err).Msg("Snapshot cleanup failed")
	} else if deleted > 0 {
		logger.Log.Info().Int("deleted", deleted).Msg("Pruned old snapshots")
	}

	table := currency.NewTable()
	var source currency.RateSource
	if cfg.SimulatedRates {
		source = exchange.NewSimulated(currency.BaseCurrency, table.Rates())
	} else {
		source = exchange.NewCachedSource(
			exchange.NewFrankfurterClient(cfg.ExchangeAPIURL, 5*time.Second),
			cfg.ExchangeCacheTTL,
		)
	}
	curCtx, err := currency.NewContext(table, source, fin.Settings().Profile.Currency)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to create currency context")
	}

	go curCtx.RefreshLoop(ctx, rateRefreshInterval)
	go hist.AutoSyncLoop(ctx, cfg.AutoSyncInterval)
	go hist.AutoBackupLoop(ctx, cfg.BackupCheckInterval)

	logger.Log.Info().
		Str("user_hash", logger.HashUserID(session.UserID)).
		Bool("remote", remoteReady).
		Msg("Finance tracker started")

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Log.Info().Msg("Shutting down...")
		cancel()
	}()

	<-ctx.Done()
}
