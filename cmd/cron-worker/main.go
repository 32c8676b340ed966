package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ordena-app/ordena-backend/internal/businesses"
	"github.com/ordena-app/ordena-backend/internal/clients"
	"github.com/ordena-app/ordena-backend/internal/cron"
	"github.com/ordena-app/ordena-backend/internal/notifications"
	"github.com/ordena-app/ordena-backend/internal/notify"
	"github.com/ordena-app/ordena-backend/internal/orders"
	"github.com/ordena-app/ordena-backend/internal/recipients"
	"github.com/ordena-app/ordena-backend/pkg/config"
	"github.com/ordena-app/ordena-backend/pkg/db"
	"github.com/ordena-app/ordena-backend/pkg/logger"
	"github.com/ordena-app/ordena-backend/pkg/mailer"
	"github.com/ordena-app/ordena-backend/pkg/metrics"
	"github.com/ordena-app/ordena-backend/pkg/migrate"
	"github.com/ordena-app/ordena-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	loc, err := cfg.Schedule.Location()
	if err != nil {
		logg.Error(context.Background(), "failed to load platform timezone", err)
		os.Exit(1)
	}

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	mailClient, err := mailer.New(cfg.Sendgrid)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap mailer", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	orderRepo := orders.NewRepository(gormDB)
	businessRepo := businesses.NewRepository(gormDB)
	clientRepo := clients.NewRepository(gormDB)
	feedRepo := notifications.NewRepository(gormDB)

	resolver := recipients.NewResolver(businessRepo, clientRepo, logg)
	dispatcher := notify.NewDispatcher(mailClient, mailClient.DefaultFrom(), feedRepo, logg)

	registry := cron.NewRegistry()
	registry.Register(
		cron.NewReminderJob(orderRepo, resolver, dispatcher, loc, cfg.Schedule.ReminderLead, cfg.Schedule.ReminderInterval, logg),
		cron.Every(cfg.Schedule.ReminderInterval),
		0,
	)
	digestSchedule, err := cron.DailyAt(cfg.Schedule.DigestAt, loc)
	if err != nil {
		logg.Error(context.Background(), "invalid digest schedule", err)
		os.Exit(1)
	}
	registry.Register(
		cron.NewDigestJob(orderRepo, businessRepo, resolver, dispatcher, loc, logg),
		digestSchedule,
		30*time.Minute,
	)

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		LockFor: func(job string, ttl time.Duration) (cron.Lock, error) {
			return cron.NewRedisLock(redisClient, redisClient.LockKey("cron:"+job), ttl)
		},
		Metrics: metricsCollector,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
