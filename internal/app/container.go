// Package app wires configuration, persistence, transport and the
// scheduling engine into a runnable service.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	notifications "github.com/hearthhq/hearth/internal/notifications/domain"
	notifdispatch "github.com/hearthhq/hearth/internal/notifications/infrastructure/dispatch"
	notifpersistence "github.com/hearthhq/hearth/internal/notifications/infrastructure/persistence"
	notifratelimit "github.com/hearthhq/hearth/internal/notifications/infrastructure/ratelimit"
	reminders "github.com/hearthhq/hearth/internal/reminders/domain"
	reminderpersistence "github.com/hearthhq/hearth/internal/reminders/infrastructure/persistence"
	"github.com/hearthhq/hearth/internal/scheduler"
	taskpersistence "github.com/hearthhq/hearth/internal/tasks/infrastructure/persistence"
	"github.com/hearthhq/hearth/internal/urgency"
	"github.com/hearthhq/hearth/pkg/config"
)

// Container holds all initialized dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	Pool *pgxpool.Pool

	Scorer    *urgency.Scorer
	Optimizer *notifications.Optimizer
	Scheduler *scheduler.Service

	ReminderRepo reminders.Repository

	redisClient *redis.Client
	dispatcher  *notifdispatch.Dispatcher

	closers []func() error
}

// NewContainer initializes all dependencies from configuration. In
// development, missing Redis or RabbitMQ degrade to in-process
// fallbacks; in production they are required.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Container{Config: cfg, Logger: logger}

	tuning, err := config.LoadTuning(cfg.TuningFile)
	if err != nil {
		return nil, fmt.Errorf("load tuning: %w", err)
	}

	c.Scorer = urgency.NewScorer(ApplyUrgencyTuning(urgency.DefaultConfig(), tuning.Urgency))
	c.Optimizer = notifications.NewOptimizer(ApplyOptimizerTuning(notifications.DefaultOptimizerConfig(), tuning.Optimizer))

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	c.Pool = pool
	c.closers = append(c.closers, func() error { pool.Close(); return nil })
	logger.Info("connected to database")

	reminderRepo, err := c.buildReminderRepo(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.ReminderRepo = reminderRepo

	rateStore, err := c.buildRateLimitStore(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}

	dispatcher, err := c.buildDispatcher()
	if err != nil {
		c.Close()
		return nil, err
	}
	c.dispatcher = dispatcher

	c.Scheduler = scheduler.NewService(
		taskpersistence.NewPostgresTaskRepository(pool),
		reminderpersistence.NewPostgresPreferencesRepository(pool),
		reminderRepo,
		notifpersistence.NewPostgresEngagementRepository(pool),
		rateStore,
		dispatcher,
		c.Scorer,
		c.Optimizer,
		scheduler.Config{
			UserLimit:        cfg.SweepUserLimit,
			FollowUpMinLevel: urgency.LevelHigh,
		},
		logger,
	)

	return c, nil
}

// buildReminderRepo selects SQLite for single-household deployments when
// a path is configured, Postgres otherwise.
func (c *Container) buildReminderRepo(ctx context.Context) (reminders.Repository, error) {
	if c.Config.SQLitePath == "" {
		return reminderpersistence.NewPostgresReminderRepository(c.Pool), nil
	}

	db, err := reminderpersistence.OpenSQLite(c.Config.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	c.closers = append(c.closers, db.Close)

	repo := reminderpersistence.NewSQLiteReminderRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure sqlite schema: %w", err)
	}
	c.Logger.Info("using sqlite reminder store", "path", c.Config.SQLitePath)
	return repo, nil
}

func (c *Container) buildRateLimitStore(ctx context.Context) (scheduler.RateLimitStore, error) {
	opts, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if c.Config.IsDevelopment() {
			c.Logger.Warn("Redis not available, using in-memory rate-limit store", "error", err)
			return notifratelimit.NewMemoryStore(), nil
		}
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	c.redisClient = client
	c.closers = append(c.closers, client.Close)
	c.Logger.Info("connected to redis")
	return notifratelimit.NewRedisStore(client), nil
}

func (c *Container) buildDispatcher() (*notifdispatch.Dispatcher, error) {
	dispatchConfig := notifdispatch.DefaultDispatcherConfig()
	dispatchConfig.RatePerSecond = c.Config.DispatchRatePerSecond
	dispatchConfig.Burst = c.Config.DispatchBurst

	var publisher notifdispatch.Publisher
	rabbitPublisher, err := notifdispatch.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
		}
		c.Logger.Warn("RabbitMQ not available, using noop publisher", "error", err)
		publisher = notifdispatch.NewNoopPublisher(c.Logger)
	} else {
		publisher = rabbitPublisher
	}

	dispatcher := notifdispatch.NewDispatcher(publisher, dispatchConfig, c.Logger)
	c.closers = append(c.closers, dispatcher.Close)
	return dispatcher, nil
}

// Close releases all resources in reverse initialization order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.Logger.Warn("error during shutdown", "error", err)
		}
	}
	c.closers = nil
}
