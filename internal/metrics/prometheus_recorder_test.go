package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorderCounts(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.IncInitialize(true)
	pr.IncInitialize(false)
	pr.IncPublish(ResultSuccess)
	pr.IncPublish(ResultSuccess)
	pr.IncPublish(ResultTransport)
	pr.ObservePublishDuration("at-least-once", 2*time.Millisecond)
	pr.IncCounterDropped("frame_number")
	pr.IncTransportEvent("disconnected")

	assert.Equal(t, 1.0, testutil.ToFloat64(pr.initializations.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.initializations.WithLabelValues("failed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(pr.publishes.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.publishes.WithLabelValues("transport_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.counterDrops.WithLabelValues("frame_number")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.transportEvents.WithLabelValues("disconnected")))
	assert.Equal(t, 1, testutil.CollectAndCount(pr.publishDuration))
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.IncInitialize(true)
		pr.IncPublish(ResultSuccess)
		pr.ObservePublishDuration("at-most-once", time.Millisecond)
		pr.IncCounterDropped("video_timestamp")
		pr.IncTransportEvent("closed")
	})
}

func TestServeMuxServesRegistry(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncPublish(ResultSuccess)

	rec := httptest.NewRecorder()
	NewServeMux(reg, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "kos_telemetry_publishes_total"))
}

func TestServeMuxHealth(t *testing.T) {
	ready := false
	mux := NewServeMux(prom.NewRegistry(), func() bool { return ready })

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	ready = true
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

var _ Recorder = NoopRecorder{}
var _ Recorder = (*PrometheusRecorder)(nil)
