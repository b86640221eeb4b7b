package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gov-dx-sandbox/team-roster/internal/middleware"
	"github.com/gov-dx-sandbox/team-roster/internal/monitoring"
	"github.com/gov-dx-sandbox/team-roster/internal/services"
	"github.com/gov-dx-sandbox/team-roster/internal/uploads"
	"github.com/gov-dx-sandbox/team-roster/internal/utils"
)

// RouterDeps carries everything the HTTP surface needs
type RouterDeps struct {
	Service *services.MemberService
	Uploads *uploads.Store
	Logger  *slog.Logger

	// ExposeErrorDetail adds internal error text to 5xx bodies; off in production
	ExposeErrorDetail bool

	AllowedOrigins string
	CORSMaxAge     int

	// RateLimiter guards POST /api/members; nil disables limiting
	RateLimiter     middleware.RateLimiter
	RateLimit       int
	RateLimitWindow time.Duration
}

// NewRouter wires the roster API routes
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	members := NewMemberHandler(deps.Service, deps.Uploads, deps.ExposeErrorDetail)
	images := NewUploadHandler(deps.Uploads, deps.ExposeErrorDetail)
	health := NewHealthHandler(deps.Service, deps.ExposeErrorDetail)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PanicRecovery(deps.ExposeErrorDetail))
	r.Use(middleware.NewCORSMiddleware(deps.AllowedOrigins, deps.CORSMaxAge))
	r.Use(monitoring.HTTPMetricsMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondWithError(w, http.StatusNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	r.Get("/health", health.Health)
	r.Method(http.MethodGet, "/metrics", monitoring.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/members", func(r chi.Router) {
			r.Get("/", members.ListMembers)
			r.Get("/{id}", members.GetMember)
			r.With(middleware.RateLimit(deps.RateLimiter, "POST /api/members", deps.RateLimit, deps.RateLimitWindow)).
				Post("/", members.CreateMember)
		})
		r.Get("/uploads/{filename}", images.ServeUpload)
	})

	return r
}
