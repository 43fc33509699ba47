package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"openF1Poll/internal/modules/telemetry/application/port"
)

// Latency buckets in milliseconds.
var latencyBuckets = []float64{
	25, 50, 100, 250,
	500, 1000, 2500,
	5000, 10000,
}

// Recorder tracks poll outcomes on its own registry.
type Recorder struct {
	registry *prometheus.Registry
	polls    *prometheus.CounterVec
	records  *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	inflight *prometheus.GaugeVec
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		polls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "openf1_polls_total",
				Help: "Polls issued against the OpenF1 API by outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		records: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "openf1_records_written_total",
				Help: "Records persisted to the output file",
			},
			[]string{"endpoint"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "openf1_poll_latency_ms",
				Help:    "Fetch plus persist latency in milliseconds",
				Buckets: latencyBuckets,
			},
			[]string{"endpoint"},
		),
		inflight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "openf1_inflight_polls",
				Help: "Polls currently waiting on the API or the output file",
			},
			[]string{"endpoint"},
		),
	}
}

func (r *Recorder) PollStarted(endpoint string) {
	r.inflight.WithLabelValues(endpoint).Inc()
}

func (r *Recorder) PollFinished(endpoint, outcome string, elapsed time.Duration, records int) {
	r.inflight.WithLabelValues(endpoint).Dec()
	r.polls.WithLabelValues(endpoint, outcome).Inc()
	r.latency.WithLabelValues(endpoint).Observe(float64(elapsed.Microseconds()) / 1000)
	if outcome == port.OutcomeOK && records > 0 {
		r.records.WithLabelValues(endpoint).Add(float64(records))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

var _ port.PollObserver = (*Recorder)(nil)
