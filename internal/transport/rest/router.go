package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/crm-assistant/internal/activity"
	"github.com/frahmantamala/crm-assistant/internal/assistant"
	"github.com/frahmantamala/crm-assistant/internal/auth"
	"github.com/frahmantamala/crm-assistant/internal/category"
	"github.com/frahmantamala/crm-assistant/internal/command"
	"github.com/frahmantamala/crm-assistant/internal/session"
	"github.com/frahmantamala/crm-assistant/internal/transport/middleware"
	"github.com/frahmantamala/crm-assistant/internal/transport/swagger"
	"github.com/frahmantamala/crm-assistant/internal/user"
	"github.com/go-chi/chi"
)

// Handlers groups everything the router mounts. Nil handlers leave their
// routes unregistered.
type Handlers struct {
	Auth       *auth.Handler
	RBAC       *auth.RBACAuthorization
	Users      *user.Handler
	Categories *category.Handler
	Commands   *command.Handler
	Sessions   *session.Handler
	Chat       *assistant.Handler
	Activity   *activity.Handler
	Health     *HealthHandler
}

type RouterOptions struct {
	AllowedOrigins string
	Contract       []byte
	// Validate checks requests against Contract; nil disables validation.
	Validate func(http.Handler) http.Handler
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts RouterOptions, logger *slog.Logger) {
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	if len(opts.Contract) > 0 {
		router.Get(swagger.SpecURL, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/yaml")
			_, _ = w.Write(opts.Contract)
		})
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		if opts.Validate != nil {
			r.Use(opts.Validate)
		}

		if h.Health != nil {
			r.Get("/health", h.Health.Health)
			r.Get("/ping", h.Health.Ping)
		}

		if h.Auth == nil {
			return
		}

		r.Route("/auth", func(ar chi.Router) {
			ar.Post("/login", h.Auth.Login)
			ar.Post("/refresh", h.Auth.RefreshToken)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/users/me", h.Auth.Me)

			if h.Categories != nil {
				pr.Get("/categories", h.Categories.GetCategories)
			}

			if h.RBAC != nil {
				pr.Group(func(admin chi.Router) {
					admin.Use(h.RBAC.RequireAdmin())
					if h.Users != nil {
						admin.Get("/users", h.Users.ListUsers)
						admin.Get("/users/{id}", h.Users.GetUser)
					}
					if h.Activity != nil {
						admin.Get("/activity", h.Activity.Recent)
					}
				})

				if h.Activity != nil && h.Activity.Stats != nil {
					pr.With(h.RBAC.RequireFeature(auth.FeatureViewStatistics)).Get("/dashboard", h.Activity.Dashboard)
				}
				if h.Sessions != nil {
					pr.With(h.RBAC.RequirePermission(auth.ResourceContact, auth.ActionRead)).Post("/session/refresh", h.Sessions.Refresh)
				}
			}

			if h.Sessions != nil {
				pr.Get("/session/history", h.Sessions.History)
				pr.Delete("/session/history", h.Sessions.ClearHistory)

				pr.Route("/voice", func(vr chi.Router) {
					vr.Post("/start", h.Sessions.VoiceStart)
					vr.Post("/interim", h.Sessions.VoiceInterim)
					vr.Post("/final", h.Sessions.VoiceFinal)
					vr.Post("/stop", h.Sessions.VoiceStop)
				})
			}

			if h.Commands != nil {
				pr.Get("/commands", h.Commands.ListCommands)
				pr.Post("/commands/interpret", h.Commands.Interpret)
			}

			if h.Chat != nil {
				pr.Post("/chat", h.Chat.Chat)
			}
		})
	})
}
