package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/ordena-app/ordena-backend/internal/actions"
	"github.com/ordena-app/ordena-backend/internal/assignment"
	"github.com/ordena-app/ordena-backend/internal/businesses"
	"github.com/ordena-app/ordena-backend/internal/clients"
	"github.com/ordena-app/ordena-backend/internal/couriers"
	"github.com/ordena-app/ordena-backend/internal/dispatch"
	"github.com/ordena-app/ordena-backend/internal/notifications"
	"github.com/ordena-app/ordena-backend/internal/notify"
	"github.com/ordena-app/ordena-backend/internal/orders"
	"github.com/ordena-app/ordena-backend/internal/recipients"
	"github.com/ordena-app/ordena-backend/internal/zones"
	"github.com/ordena-app/ordena-backend/pkg/config"
	"github.com/ordena-app/ordena-backend/pkg/db"
	"github.com/ordena-app/ordena-backend/pkg/events/idempotency"
	"github.com/ordena-app/ordena-backend/pkg/logger"
	"github.com/ordena-app/ordena-backend/pkg/mailer"
	"github.com/ordena-app/ordena-backend/pkg/migrate"
	"github.com/ordena-app/ordena-backend/pkg/pubsub"
	"github.com/ordena-app/ordena-backend/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "dispatch-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	cfg.Service.Kind = "dispatch-worker"

	logg = logger.New(logger.Options{
		ServiceName: "dispatch-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	requireResource(ctx, logg, "dev migrations", migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient))

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(ctx, "error closing pubsub client", err)
		}
	}()

	mailClient, err := mailer.New(cfg.Sendgrid)
	requireResource(ctx, logg, "mailer", err)

	subscription := pubsubClient.DocumentEventsSubscription()
	if subscription == nil {
		requireResource(ctx, logg, "document events subscription", errors.New("subscription not configured"))
	}

	manager, err := idempotency.NewManager(redisClient, cfg.Eventing.IdempotencyTTL)
	requireResource(ctx, logg, "idempotency manager", err)

	gormDB := dbClient.DB()
	orderRepo := orders.NewRepository(gormDB)
	businessRepo := businesses.NewRepository(gormDB)
	courierRepo := couriers.NewRepository(gormDB)
	zoneRepo := zones.NewRepository(gormDB)
	clientRepo := clients.NewRepository(gormDB)
	feedRepo := notifications.NewRepository(gormDB)

	resolver := recipients.NewResolver(businessRepo, clientRepo, logg)
	selector := assignment.NewSelector(zoneRepo, courierRepo, cfg.Dispatch.FallbackCourierPhones, logg)
	dispatcher := notify.NewDispatcher(mailClient, mailClient.DefaultFrom(), feedRepo, logg)
	tokens := actions.NewCodec(cfg.Dispatch.ActionTokenSecret, cfg.Dispatch.ActionTokenTTL)

	router := dispatch.NewRouter(
		orderRepo,
		courierRepo,
		resolver,
		selector,
		dispatcher,
		tokens,
		cfg.Dispatch.DashboardURL,
		logg,
	)

	consumer, err := dispatch.NewConsumer(subscription, router, manager, logg)
	requireResource(ctx, logg, "dispatch consumer", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(runCtx, "dispatch worker ready")

	if err := consumer.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "dispatch worker failed", err)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
