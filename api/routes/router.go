package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ordena-app/ordena-backend/api/controllers"
	"github.com/ordena-app/ordena-backend/api/middleware"
	"github.com/ordena-app/ordena-backend/internal/actions"
	"github.com/ordena-app/ordena-backend/internal/notifications"
	"github.com/ordena-app/ordena-backend/pkg/config"
	"github.com/ordena-app/ordena-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	actionService *actions.Service,
	tokens *actions.Codec,
	feedRepo notifications.Repository,
	readiness map[string]controllers.Pinger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	deliveryAction := controllers.DeliveryAction(actionService, tokens, cfg.Dispatch.DashboardURL, logg)
	r.Get("/delivery-action", deliveryAction)
	r.Options("/delivery-action", deliveryAction)

	r.Route("/api/v1/businesses/{businessID}/notifications", func(r chi.Router) {
		r.Get("/", controllers.NotificationsList(feedRepo, logg))
		r.Post("/{notificationID}/read", controllers.NotificationMarkRead(feedRepo, logg))
		r.Post("/read-all", controllers.NotificationsMarkAllRead(feedRepo, logg))
	})

	return r
}
