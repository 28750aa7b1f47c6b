package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hris-notify/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/identity"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// RouterConfig carries the values the router needs from the app config.
type RouterConfig struct {
	Env         string
	FrontendURL string
	LogLevel    slog.Level
}

func NewRouter(
	cfg RouterConfig,
	verifier identity.Verifier,
	reconciliationHandler ReconciliationHandler,
	notifyHandler NotifyHandler,
	notificationHandler NotificationHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env == "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-notify"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Server-to-server triggers
		r.Route("/notify", func(r chi.Router) {
			r.Post("/reconciliation", notifyHandler.Reconciliation)
			r.Post("/decision", notifyHandler.Decision)
			r.Post("/task", notifyHandler.Task)
		})

		// EventSource cannot send headers; the stream authenticates with a
		// short-lived query token instead.
		r.Get("/notifications/stream", notificationHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(verifier))

			r.Route("/reconciliations", func(r chi.Router) {
				r.Post("/", reconciliationHandler.Create)
				r.Post("/decision", reconciliationHandler.Decide)
				r.Get("/{id}", reconciliationHandler.Get)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.Get("/unread-count", notificationHandler.UnreadCount)
				r.Post("/read", notificationHandler.MarkAsRead)
				r.Post("/read-all", notificationHandler.MarkAllAsRead)
				r.Get("/sse-token", notificationHandler.GetSSEToken)
				r.Delete("/{id}", notificationHandler.Delete)
			})

			r.Post("/devices", notificationHandler.RegisterDevice)
		})
	})
	return r
}
