package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	temporalclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/lutrii/payments/internal/activity"
	"github.com/lutrii/payments/internal/config"
	"github.com/lutrii/payments/internal/core"
	"github.com/lutrii/payments/internal/db"
	"github.com/lutrii/payments/internal/events"
	"github.com/lutrii/payments/internal/logging"
	"github.com/lutrii/payments/internal/metrics"
	"github.com/lutrii/payments/internal/oracle"
	"github.com/lutrii/payments/internal/swap"
	"github.com/lutrii/payments/internal/workflow"
)

const taskQueue = "payment-tasks"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "payments-worker"
	}

	if err := cfg.Validate("worker"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

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

	tc, err := temporalclient.Dial(temporalclient.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to temporal")
	}
	defer tc.Close()

	w := worker.New(tc, taskQueue, worker.Options{})

	// Register activities
	paymentActivities := activity.NewPayments(corePool, services.Executor, logger)
	w.RegisterActivity(paymentActivities)

	// Register workflows
	w.RegisterWorkflow(workflow.SweepDuePaymentsWorkflow)

	if cfg.MetricsAddr != "" {
		metricsSrv := metrics.NewServer(cfg.MetricsAddr)
		go func() {
			logger.Info().Str("addr", cfg.MetricsAddr).Msg("starting metrics server")
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	go func() {
		logger.Info().Str("taskQueue", taskQueue).Msg("starting temporal worker")
		if err := w.Run(worker.InterruptCh()); err != nil {
			logger.Fatal().Err(err).Msg("worker failed")
		}
	}()

	// Register cron schedules. Errors for already-existing schedules are
	// ignored so that re-deploys do not fail.
	registerCronSchedules(ctx, tc, taskQueue, cfg, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down worker")
	cancel()
}

type cronSchedule struct {
	id       string
	cron     string
	workflow interface{}
	args     []interface{}
}

func registerCronSchedules(ctx context.Context, tc temporalclient.Client, taskQueue string, cfg *config.Config, logger zerolog.Logger) {
	schedules := []cronSchedule{
		{
			id:       "payment-sweep-cron",
			cron:     "*/5 * * * *",
			workflow: workflow.SweepDuePaymentsWorkflow,
			args: []interface{}{activity.SweepParams{
				BatchSize:   cfg.SweepBatchSize,
				Concurrency: cfg.SweepConcurrency,
			}},
		},
	}

	scheduleClient := tc.ScheduleClient()

	for _, s := range schedules {
		_, err := scheduleClient.Create(ctx, temporalclient.ScheduleOptions{
			ID: s.id,
			Spec: temporalclient.ScheduleSpec{
				CronExpressions: []string{s.cron},
			},
			Action: &temporalclient.ScheduleWorkflowAction{
				ID:        s.id,
				Workflow:  s.workflow,
				Args:      s.args,
				TaskQueue: taskQueue,
			},
		})
		if err != nil {
			if strings.Contains(err.Error(), "already exists") || strings.Contains(err.Error(), "AlreadyExists") || strings.Contains(err.Error(), "already registered") {
				logger.Info().Str("id", s.id).Msg("cron schedule already exists, skipping")
			} else {
				logger.Fatal().Err(err).Str("id", s.id).Msg("failed to create cron schedule")
			}
		} else {
			logger.Info().Str("id", s.id).Str("cron", s.cron).Msg("created cron schedule")
		}
	}
}
