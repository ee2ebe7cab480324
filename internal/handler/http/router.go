package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	AllowedOrigins []string
	Logger         *slog.Logger
	LogLevel       slog.Level
}

// NewLogger returns a JSON logger whose attributes follow the ECS schema httplog writes.
func NewLogger(w io.Writer, level slog.Level, env string) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(env != "production")
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-attendance-freeze"),
		slog.String("env", env),
	)
}

func NewRouter(JWTService jwt.Service, freezeHandler FreezeHandler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/payroll/attendance-freezes/{year}/{month}", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionFreezeView)).Get("/", freezeHandler.Status)
				r.With(middleware.RequirePermission(user.PermissionFreezeView)).Get("/preview", freezeHandler.Preview)
				r.With(middleware.RequirePermission(user.PermissionSnapshotView)).Get("/snapshots", freezeHandler.ListSnapshots)
				r.With(middleware.RequirePermission(user.PermissionSnapshotView)).Get("/register", freezeHandler.Register)
				r.With(middleware.RequirePermission(user.PermissionSnapshotView)).Get("/register.pdf", freezeHandler.ExportRegister)
				r.With(middleware.RequirePermission(user.PermissionFreezeFinalize)).Post("/finalize", freezeHandler.Finalize)
				r.With(middleware.RequirePermission(user.PermissionFreezeUnfreeze)).Post("/unfreeze", freezeHandler.Unfreeze)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})

	return r
}
