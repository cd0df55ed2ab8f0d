package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hearthhq/hearth/internal/app"
	"github.com/hearthhq/hearth/pkg/config"
	"github.com/hearthhq/hearth/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()
	logger.Info("starting hearth scheduler")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	logger.Info("scheduler ready",
		"sweep_interval", cfg.SweepInterval,
		"user_limit", cfg.SweepUserLimit,
	)

	runSweep := func() {
		start := time.Now()
		sweepCtx, sweepCancel := context.WithTimeout(ctx, cfg.SweepInterval)
		defer sweepCancel()

		result, err := container.Scheduler.Sweep(sweepCtx, start)
		if err != nil {
			logger.Error("sweep failed", "error", err)
			return
		}
		logger.Info("sweep completed",
			"users", result.UsersProcessed,
			"failed", result.UsersFailed,
			"tasks_scored", result.TasksScored,
			"reminders_created", result.RemindersCreated,
			"notifications", result.NotificationsDispatched,
			"rate_limited", result.RateLimited,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	runSweep()

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			runSweep()
		}
	}
}
