package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	initializations *prom.CounterVec
	publishes       *prom.CounterVec
	publishDuration *prom.HistogramVec
	counterDrops    *prom.CounterVec
	transportEvents *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg
// (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		initializations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "kos_telemetry",
			Name:      "initializations_total",
			Help:      "Publisher initializations by result",
		}, []string{"result"}),
		publishes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "kos_telemetry",
			Name:      "publishes_total",
			Help:      "Publish calls by outcome",
		}, []string{"result"}),
		publishDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "kos_telemetry",
			Name:      "publish_duration_seconds",
			Help:      "Time spent handing a payload to the transport",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"qos"}),
		counterDrops: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "kos_telemetry",
			Name:      "counter_ops_dropped_total",
			Help:      "Best-effort counter operations skipped because the counter was busy",
		}, []string{"counter"}),
		transportEvents: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "kos_telemetry",
			Name:      "transport_events_total",
			Help:      "Transport notifications drained by the background loop",
		}, []string{"kind"}),
	}
	reg.MustRegister(pr.initializations, pr.publishes, pr.publishDuration, pr.counterDrops, pr.transportEvents)
	return pr
}

func resultOf(success bool) string {
	if success {
		return "success"
	}
	return "failed"
}

func (p *PrometheusRecorder) IncInitialize(success bool) {
	if p == nil || p.initializations == nil {
		return
	}
	p.initializations.WithLabelValues(resultOf(success)).Inc()
}

func (p *PrometheusRecorder) IncPublish(result ResultLabel) {
	if p == nil || p.publishes == nil {
		return
	}
	p.publishes.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) ObservePublishDuration(qos string, d time.Duration) {
	if p == nil || p.publishDuration == nil {
		return
	}
	p.publishDuration.WithLabelValues(qos).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncCounterDropped(counter string) {
	if p == nil || p.counterDrops == nil {
		return
	}
	p.counterDrops.WithLabelValues(counter).Inc()
}

func (p *PrometheusRecorder) IncTransportEvent(kind string) {
	if p == nil || p.transportEvents == nil {
		return
	}
	p.transportEvents.WithLabelValues(kind).Inc()
}
