package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/barribox/barribox-backend/api/controllers"
	"github.com/barribox/barribox-backend/api/middleware"
	"github.com/barribox/barribox-backend/internal/assistant"
	"github.com/barribox/barribox-backend/internal/orders"
	"github.com/barribox/barribox-backend/internal/support"
	"github.com/barribox/barribox-backend/internal/users"
	"github.com/barribox/barribox-backend/pkg/config"
	"github.com/barribox/barribox-backend/pkg/enums"
	"github.com/barribox/barribox-backend/pkg/kv"
	"github.com/barribox/barribox-backend/pkg/logger"
	"github.com/barribox/barribox-backend/pkg/metrics"
	"github.com/barribox/barribox-backend/pkg/models"
)

type sessionManager interface {
	controllers.SessionManager
	Resolve(ctx context.Context, sessionID string) (*models.User, error)
}

// Services bundles the domain services the API exposes.
type Services struct {
	Users     users.Service
	Orders    orders.Service
	Assistant assistant.Service
	Support   support.Service
}

// Infra bundles the stores and clients the middleware and probes use.
// Limiter and Places may be nil.
type Infra struct {
	Store    kv.Store
	Limiter  middleware.RateLimiterStore
	Sessions sessionManager
	Lookup   middleware.UserLookup
	Places   controllers.PlacesClient
	Gatherer prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, infra Infra, svc Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins...),
	)

	sessionPolicy := middleware.NewRateLimitPolicy(
		"session",
		cfg.RateLimit.SessionWindow,
		cfg.RateLimit.SessionIPLimit,
		0,
	)
	assistantPolicy := middleware.NewRateLimitPolicy(
		"assistant",
		cfg.RateLimit.AssistantWindow,
		0,
		cfg.RateLimit.AssistantLimit,
	)
	idempotent := middleware.Idempotency(infra.Store, cfg.Store.KeyPrefix, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, infra.Store))
	})
	if infra.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(infra.Gatherer))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Get("/neighborhoods", controllers.Neighborhoods())
		r.Get("/pickup-points", controllers.PickupPoints())
		r.Get("/prices", controllers.Prices())
		r.Get("/partners", controllers.Partners())
		r.Get("/catalog", controllers.Catalog())
	})

	r.Route("/api/session", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(sessionPolicy, infra.Limiter, logg))
			r.Post("/register", controllers.SessionRegister(svc.Users, infra.Sessions, logg))
			r.Post("/login", controllers.SessionLogin(svc.Users, infra.Sessions, logg))
		})
		r.Get("/users", controllers.SessionUsers(svc.Users, logg))
		r.With(middleware.Auth(cfg.JWT, infra.Sessions, infra.Lookup, logg)).
			Post("/logout", controllers.SessionLogout(infra.Sessions, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, infra.Sessions, infra.Lookup, logg))

		r.Route("/me", func(r chi.Router) {
			r.Get("/", controllers.MeGet(logg))
			r.Patch("/", controllers.MeUpdate(svc.Users, infra.Sessions, logg))
			r.Post("/switch-role", controllers.MeSwitchRole(svc.Users, infra.Sessions, logg))
			r.Get("/history", controllers.MeHistory(svc.Orders, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(svc.Orders, logg))
			r.Get("/active", controllers.OrderActive(svc.Orders, logg))
			r.With(middleware.RequireRole(enums.UserRoleSender, logg), idempotent).
				Post("/", controllers.OrderCreate(svc.Orders, logg))

			r.Route("/{orderId}", func(r chi.Router) {
				r.Get("/", controllers.OrderDetail(svc.Orders, logg))
				r.Post("/status", controllers.OrderStatus(svc.Orders, logg))
				r.Get("/chat", controllers.OrderChatList(svc.Orders, logg))
				r.Post("/chat", controllers.OrderChatSend(svc.Assistant, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(enums.UserRoleSender, logg))
					r.Post("/drop-off", controllers.OrderTransition(svc.Orders, enums.OrderStatusAtPickupPoint, logg))
					r.Post("/confirm", controllers.OrderTransition(svc.Orders, enums.OrderStatusFinalized, logg))
					r.Post("/decline", controllers.OrderTransition(svc.Orders, enums.OrderStatusDisputed, logg))
				})
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(enums.UserRoleCourier, logg))
					r.Post("/assign", controllers.OrderTransition(svc.Orders, enums.OrderStatusAssigned, logg))
					r.Post("/pickup", controllers.OrderTransition(svc.Orders, enums.OrderStatusPickedUp, logg))
					r.Post("/start-route", controllers.OrderTransition(svc.Orders, enums.OrderStatusInTransit, logg))
					r.Post("/deliver", controllers.OrderTransition(svc.Orders, enums.OrderStatusDelivered, logg))
				})
			})
		})

		r.With(middleware.RequireRole(enums.UserRoleCourier, logg)).
			Get("/market", controllers.Market(svc.Orders, logg))
		r.With(idempotent).Post("/marketplace/purchases", controllers.Purchase(svc.Orders, logg))

		r.Get("/tracking", controllers.Tracking(svc.Orders, logg))
		r.Get("/points/map", controllers.PointsMap(cfg.GoogleMaps.APIKey, logg))
		r.Get("/places/autocomplete", controllers.PlacesAutocomplete(infra.Places, logg))

		r.Route("/assistant", func(r chi.Router) {
			r.Use(middleware.RateLimit(assistantPolicy, infra.Limiter, logg))
			r.Post("/voice", controllers.AssistantVoice(svc.Assistant, logg))
			r.Post("/faq", controllers.AssistantFAQ(svc.Assistant, logg))
			r.Post("/support", controllers.AssistantSupport(svc.Assistant, logg))
		})

		r.Route("/support/tickets", func(r chi.Router) {
			r.Get("/", controllers.SupportTickets(svc.Support, logg))
			r.Post("/", controllers.SupportOpen(svc.Support, logg))
		})
	})

	return r
}
