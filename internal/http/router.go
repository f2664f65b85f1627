package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterConfig struct {
	Auth       *AuthHandler
	Bookings   *BookingHandler
	Rooms      *RoomHandler
	Users      *UserHandler
	Validator  TokenValidator
	Health     Pinger
	Metrics    *Metrics
	CORSOrigin string
	Logger     *slog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := defaultLogger(cfg.Logger)
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(Recover(logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	if origin := strings.TrimSpace(cfg.CORSOrigin); origin != "" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{origin},
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	responder := newResponder(logger)
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responder.writeError(req.Context(), w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		responder.writeError(req.Context(), w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	if cfg.Health != nil {
		r.Get("/healthz", healthHandler(cfg.Health, responder))
	}
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.Auth != nil {
			api.Post("/auth/register", cfg.Auth.Register)
			api.Post("/auth/login", cfg.Auth.Login)
		}

		api.Group(func(protected chi.Router) {
			protected.Use(RequireToken(cfg.Validator, logger))

			if cfg.Auth != nil {
				protected.Get("/auth/me", cfg.Auth.Me)
			}
			if cfg.Bookings != nil {
				protected.Route("/bookings", func(b chi.Router) {
					b.Get("/", cfg.Bookings.List)
					b.Post("/", cfg.Bookings.Create)
					b.Get("/user", cfg.Bookings.ListOwn)
					b.Put("/{id}", cfg.Bookings.Update)
					b.Put("/{id}/status", cfg.Bookings.UpdateStatus)
					b.Delete("/{id}", cfg.Bookings.Delete)
				})
			}
			if cfg.Users != nil {
				protected.Route("/users", func(u chi.Router) {
					u.Get("/", cfg.Users.List)
					u.Put("/{id}", cfg.Users.Update)
					u.Patch("/{id}/role", cfg.Users.UpdateRole)
					u.Delete("/{id}", cfg.Users.Delete)
				})
			}
			if cfg.Rooms != nil {
				protected.Get("/rooms/available", cfg.Rooms.Available)
				protected.Get("/rooms/check-availability", cfg.Rooms.CheckAvailability)
			}
		})
	})

	return r
}

func healthHandler(pinger Pinger, responder responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pinger.Ping(ctx); err != nil {
			responder.writeJSON(r.Context(), w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Error: err.Error()})
			return
		}
		responder.writeJSON(r.Context(), w, http.StatusOK, healthResponse{Status: "ok"})
	}
}

type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
