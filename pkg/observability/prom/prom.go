// Package prom records engine and store hook events as Prometheus metrics.
//
// The CLI runs one operation per process, so metrics are not served over
// HTTP. Instead they are gathered into a registry and written as a
// node_exporter textfile once the command finishes:
//
//	h := prom.New(prometheus.NewRegistry())
//	observability.SetEngineHooks(h)
//	observability.SetStoreHooks(h)
//	// ... run the command ...
//	err := h.WriteTextfile("/var/lib/node_exporter/sciactivity.prom")
package prom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperr "github.com/AnastasiaP261/sci-activity-doc/pkg/errors"
	"github.com/AnastasiaP261/sci-activity-doc/pkg/observability"
)

const namespace = "sciactivity"

var (
	_ observability.EngineHooks = (*Hooks)(nil)
	_ observability.StoreHooks  = (*Hooks)(nil)
)

// Hooks implements both hook interfaces on top of one registry.
type Hooks struct {
	gatherer prometheus.Gatherer

	operations *prometheus.CounterVec
	opDuration *prometheus.HistogramVec
	rejections *prometheus.CounterVec

	storeRequests *prometheus.CounterVec
	savedBytes    *prometheus.HistogramVec
}

// New registers the metrics on reg.
func New(reg *prometheus.Registry) *Hooks {
	f := promauto.With(reg)
	return &Hooks{
		gatherer: reg,

		// Labels: op, result ("ok" or "error")
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "engine_operations_total",
			Help:      "Engine operations by outcome",
		}, []string{"op", "result"}),

		opDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "engine_operation_duration_seconds",
			Help:      "Engine operation duration",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"op"}),

		// Labels: op, code (VALIDATION_ERROR, BAD_REQUEST, ...)
		rejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "engine_rejections_total",
			Help:      "Requests refused by the engine",
		}, []string{"op", "code"}),

		storeRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_requests_total",
			Help:      "Store calls by backend, method and outcome",
		}, []string{"backend", "method", "result"}),

		savedBytes: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_saved_bytes",
			Help:      "Size of saved DOT text",
			Buckets:   prometheus.ExponentialBuckets(32, 4, 6),
		}, []string{"backend"}),
	}
}

func (h *Hooks) OnOperationStart(context.Context, string, int64) {}

func (h *Hooks) OnOperationComplete(_ context.Context, op string, _ int64, d time.Duration, err error) {
	h.operations.WithLabelValues(op, result(err)).Inc()
	h.opDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (h *Hooks) OnRejected(_ context.Context, op string, _ int64, err error) {
	h.rejections.WithLabelValues(op, string(apperr.GetCode(err))).Inc()
}

func (h *Hooks) OnLoad(_ context.Context, backend string, _ int64, _ time.Duration, err error) {
	h.storeRequests.WithLabelValues(backend, "load", result(err)).Inc()
}

func (h *Hooks) OnSave(_ context.Context, backend string, _ int64, size int, _ time.Duration, err error) {
	h.storeRequests.WithLabelValues(backend, "save", result(err)).Inc()
	if err == nil {
		h.savedBytes.WithLabelValues(backend).Observe(float64(size))
	}
}

func (h *Hooks) OnDelete(_ context.Context, backend string, _ int64, err error) {
	h.storeRequests.WithLabelValues(backend, "delete", result(err)).Inc()
}

// WriteTextfile writes every gathered metric to path in the text
// exposition format. The file is replaced atomically.
func (h *Hooks) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, h.gatherer)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
