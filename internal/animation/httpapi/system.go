package httpapi

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "healthy",
		Service:     h.cfg.ServiceName,
		Timestamp:   h.now().UTC().Format(time.RFC3339Nano),
		Environment: h.cfg.Environment,
	})
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeFail(w, http.StatusNotFound, "Route "+r.URL.RequestURI()+" not found")
}
