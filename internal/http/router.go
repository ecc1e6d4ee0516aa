package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/rokotuskortti/vaccination-erecord/internal/config"
	"github.com/rokotuskortti/vaccination-erecord/internal/dose"
	"github.com/rokotuskortti/vaccination-erecord/internal/httputil"
	"github.com/rokotuskortti/vaccination-erecord/internal/logging"
	"github.com/rokotuskortti/vaccination-erecord/internal/session"
	"github.com/rokotuskortti/vaccination-erecord/internal/user"
	"github.com/rokotuskortti/vaccination-erecord/internal/vaccine"
)

// Version is the API version reported by /api/version. Overridable at
// build time with -ldflags "-X ...http.Version=".
var Version = "1.0.0"

// Handlers bundles the per-resource handlers the router mounts.
type Handlers struct {
	Session *session.Handler
	User    *user.Handler
	Vaccine *vaccine.Handler
	Dose    *dose.Handler
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, h Handlers, sessionMW *session.Middleware, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first. Credentials stay on because auth rides in
	// a cookie.
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Compress(5))

	// Operational endpoints
	r.Get("/health", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	// Swagger UI - only in development. The UI reads doc.json from the
	// swag-generated docs package; run `swag init -g cmd/api/main.go`
	// and blank-import the docs package in main before first use.
	if cfg.Server.IsDevelopment() {
		logger.Info("swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Get("/version", handleVersion)
		r.Post("/login", h.Session.Login)
		r.Post("/user", h.User.Create)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(sessionMW.RequireAuth)

			r.Get("/logout", h.Session.Logout)

			r.Get("/user", h.User.Current)
			r.Put("/user", h.User.Update)

			r.Get("/vaccine", h.Vaccine.List)
			r.Post("/vaccine", h.Vaccine.Create)

			r.Get("/dose", h.Dose.List)
			r.Post("/dose", h.Dose.Create)
			r.Put("/dose/{id}", h.Dose.Update)
		})
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}

// handleVersion reports the API version
// @Summary      API version
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /api/version [get]
func handleVersion(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"version": Version}, http.StatusOK)
}
