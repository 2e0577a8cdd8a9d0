package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/romariotrain/animation-platform/internal/animation/metrics"
	"github.com/romariotrain/animation-platform/internal/animation/models"
	"github.com/romariotrain/animation-platform/internal/animation/service"
	"github.com/romariotrain/animation-platform/internal/auth"
)

type Services struct {
	Orchestrator *service.Orchestrator
	Query        *service.Query
	Accounts     *service.Accounts
	Gateway      *auth.Gateway
}

type Config struct {
	ServiceName string
	Environment string
	// FrontendURL is the single origin allowed by CORS. Empty allows any origin.
	FrontendURL        string
	UploadPath         string
	RateLimitPerMinute int
	Gatherer           prometheus.Gatherer
	Metrics            *metrics.Collector
	Logger             zerolog.Logger
}

type Handler struct {
	svc      Services
	cfg      Config
	validate *validator.Validate
	logger   zerolog.Logger
	now      func() time.Time
}

func New(svc Services, cfg Config) *Handler {
	return &Handler{
		svc:      svc,
		cfg:      cfg,
		validate: newValidator(),
		logger:   cfg.Logger.With().Str("component", "httpapi").Logger(),
		now:      time.Now,
	}
}

func (h *Handler) production() bool {
	return h.cfg.Environment == "production"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func writeFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

// writeError maps err onto the response taxonomy. notFound is the message
// used for models.ErrNotFound.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var (
		verrs models.ValidationErrors
		aerr  *auth.Error
		qerr  *models.QuotaExceededError
		gerr  *models.GenerationError
	)
	switch {
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusBadRequest, envelope{Message: "Validation error", Details: verrs})
	case errors.Is(err, errInvalidBody):
		writeFail(w, http.StatusBadRequest, "Invalid JSON body")
	case errors.As(err, &aerr):
		writeFail(w, http.StatusUnauthorized, aerr.Message)
	case errors.As(err, &qerr):
		writeJSON(w, http.StatusTooManyRequests, envelope{
			Message: "API usage limit exceeded",
			Usage:   quotaUsage{Current: qerr.Current, Limit: qerr.Limit, Plan: qerr.Plan},
		})
	case errors.As(err, &gerr):
		body := envelope{Message: "Failed to generate animation", Error: gerr.Detail}
		if gerr.Animation != nil {
			body.Data = animationData{Animation: toAnimationResponse(gerr.Animation)}
		}
		writeJSON(w, http.StatusInternalServerError, body)
	case errors.Is(err, models.ErrNotFound):
		writeFail(w, http.StatusNotFound, notFound)
	case errors.Is(err, models.ErrConflict):
		writeFail(w, http.StatusBadRequest, "Email or username already exists")
	case errors.Is(err, models.ErrUnavailable):
		w.Header().Set("Retry-After", "30")
		writeFail(w, http.StatusServiceUnavailable, "Service is shutting down")
	default:
		h.logger.Error().
			Err(err).
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		body := envelope{Message: "Internal server error"}
		if !h.production() {
			body.Error = err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, body)
	}
}
