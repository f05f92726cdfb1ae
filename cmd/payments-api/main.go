package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lutrii/payments/internal/api"
	"github.com/lutrii/payments/internal/config"
	"github.com/lutrii/payments/internal/core"
	"github.com/lutrii/payments/internal/db"
	"github.com/lutrii/payments/internal/events"
	"github.com/lutrii/payments/internal/logging"
	"github.com/lutrii/payments/internal/metrics"
	"github.com/lutrii/payments/internal/oracle"
	"github.com/lutrii/payments/internal/swap"
)

func main() {
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	migrateDirFlag := flag.String("migrate-dir", "migrations/core", "Migration files directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "payments-api"
	}

	if err := cfg.Validate("payments-api"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	if *migrateFlag {
		logger.Info().Str("dir", *migrateDirFlag).Msg("running database migrations")
		if err := db.RunMigrations(cfg.CoreDatabaseURL, *migrateDirFlag); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	corePool, err := db.NewCorePool(ctx, cfg.CoreDatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to core database")
	}
	defer corePool.Close()
	metrics.RegisterPgxPoolMetrics(corePool)

	policy, err := core.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load payment policy")
	}

	var emitter events.Emitter = events.Nop{}
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		producer := events.NewProducer(brokers, cfg.KafkaTopic, logger)
		defer producer.Close()
		emitter = producer
		logger.Info().Strs("brokers", brokers).Str("topic", cfg.KafkaTopic).Msg("event publishing enabled")
	}

	swapper := swap.NewAdapter(swap.NewClient(cfg.AggregatorURL))
	prices := oracle.NewClient(cfg.OracleURL)

	services, err := core.NewServices(corePool, swapper, prices, policy, cfg.DiscountToken, cfg.EscrowAccount, emitter, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to wire services")
	}

	srv := api.NewServer(logger, corePool, services, cfg)

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Msg("starting payments API server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
}
