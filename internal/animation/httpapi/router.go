package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		h.logRequests,
		middleware.Recoverer,
		securityHeaders,
		cors(h.cfg.FrontendURL),
	)
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.NotFound)

	r.Get("/health", h.Health)

	gatherer := h.cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	if h.cfg.UploadPath != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(h.cfg.UploadPath))))
	}

	r.Route("/api", func(r chi.Router) {
		if h.cfg.RateLimitPerMinute > 0 {
			r.Use(httprate.Limit(
				h.cfg.RateLimitPerMinute,
				time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(h.rateLimited),
			))
		}

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.With(h.authenticate).Get("/me", h.Me)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(h.authenticate)
			r.Get("/profile", h.Me)
			r.Put("/profile", h.UpdateProfile)
			r.Get("/usage", h.Usage)
		})

		r.Route("/animations", func(r chi.Router) {
			r.Use(h.authenticate)
			r.With(h.requireQuota).Post("/generate", h.Generate)
			r.Get("/", h.ListAnimations)
			r.Get("/{id}", h.GetAnimation)
			r.Delete("/{id}", h.DeleteAnimation)
		})
	})

	return r
}
