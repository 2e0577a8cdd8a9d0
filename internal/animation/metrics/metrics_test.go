package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/romariotrain/animation-platform/internal/animation/domain"
	"github.com/romariotrain/animation-platform/internal/animation/models"
)

func TestCollector_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.Transition(domain.Processing)
	c.Transition(domain.Completed)
	c.Finished(domain.Completed, 2*time.Second)
	c.UpstreamError(models.StageRender, "status")
	c.QuotaRejected(models.PlanFree)
	c.QuotaRejected(models.PlanFree)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.transitions.WithLabelValues("COMPLETED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.generations.WithLabelValues("COMPLETED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.upstreamErrors.WithLabelValues("render", "status")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.quotaRejections.WithLabelValues("FREE")))
}

func TestCollector_ObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.ObserveRequest("GET", "/api/animations/{id}", 404, 3*time.Millisecond)
	c.ObserveRequest("GET", "/api/animations/{id}", 404, 5*time.Millisecond)
	c.ObserveRequest("POST", "/api/animations/generate", 200, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("GET", "/api/animations/{id}", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("POST", "/api/animations/generate", "200")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.httpDuration))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.Transition(domain.Failed)
		c.Finished(domain.Failed, time.Second)
		c.UpstreamError(models.StageCodegen, "transport")
		c.QuotaRejected(models.PlanPro)
		c.ObserveRequest("GET", "/health", 200, time.Millisecond)
	})
}
