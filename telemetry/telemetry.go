package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector captures telemetry events emitted by the client.
//
// Implementations may forward metrics to Prometheus, loggers or other
// monitoring systems. They should be inexpensive to call because hooks
// run inline with every request.
type Collector interface {
	IncRequest(op string)
	IncRequestError(op, kind string)
	IncReset()
	IncBufferFlush()
	SetBufferOccupancy(n int)
}

type noopCollector struct{}

// Noop returns a collector that discards all metrics.
func Noop() Collector {
	return noopCollector{}
}

func (noopCollector) IncRequest(string)              {}
func (noopCollector) IncRequestError(string, string) {}
func (noopCollector) IncReset()                      {}
func (noopCollector) IncBufferFlush()                {}
func (noopCollector) SetBufferOccupancy(int)         {}

// PrometheusCollector exposes client telemetry via Prometheus.
type PrometheusCollector struct {
	requests        *prometheus.CounterVec
	requestErrors   *prometheus.CounterVec
	resets          prometheus.Counter
	bufferFlushes   prometheus.Counter
	bufferOccupancy prometheus.Gauge
}

var (
	registryMu     sync.Mutex
	requestCounter *prometheus.CounterVec
	errorCounter   *prometheus.CounterVec
	resetCounter   prometheus.Counter
	flushCounter   prometheus.Counter
	occupancyGauge prometheus.Gauge
)

// NewPrometheusCollector registers the required metrics with the
// provided registerer. Metrics already registered by a previous
// collector are reused, so repeated construction against the same
// registry is safe.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if requestCounter == nil {
		counter := prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "display_ds9_requests_total",
			Help: "Number of XPA requests issued, by operation.",
		}, []string{"op"})
		registered, err := registerCollector(reg, counter)
		if err != nil {
			return nil, err
		}
		requestCounter = registered.(*prometheus.CounterVec)
	}

	if errorCounter == nil {
		counter := prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "display_ds9_request_errors_total",
			Help: "Number of failed XPA requests, by operation and failure kind.",
		}, []string{"op", "kind"})
		registered, err := registerCollector(reg, counter)
		if err != nil {
			return nil, err
		}
		errorCounter = registered.(*prometheus.CounterVec)
	}

	if resetCounter == nil {
		counter := prometheus.NewCounter(prometheus.CounterOpts{
			Name: "display_ds9_connection_resets_total",
			Help: "Number of explicit connection resets.",
		})
		registered, err := registerCollector(reg, counter)
		if err != nil {
			return nil, err
		}
		resetCounter = registered.(prometheus.Counter)
	}

	if flushCounter == nil {
		counter := prometheus.NewCounter(prometheus.CounterOpts{
			Name: "display_ds9_command_buffer_flushes_total",
			Help: "Number of command buffer flushes sent to the display.",
		})
		registered, err := registerCollector(reg, counter)
		if err != nil {
			return nil, err
		}
		flushCounter = registered.(prometheus.Counter)
	}

	if occupancyGauge == nil {
		gauge := prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "display_ds9_command_buffer_occupancy_bytes",
			Help: "Bytes pending in the command buffer after the last append.",
		})
		registered, err := registerCollector(reg, gauge)
		if err != nil {
			return nil, err
		}
		occupancyGauge = registered.(prometheus.Gauge)
	}

	return &PrometheusCollector{
		requests:        requestCounter,
		requestErrors:   errorCounter,
		resets:          resetCounter,
		bufferFlushes:   flushCounter,
		bufferOccupancy: occupancyGauge,
	}, nil
}

// registerCollector registers c, tolerating a previous registration of
// the same metric and returning the collector that is live in the
// registry.
func registerCollector(reg prometheus.Registerer, c prometheus.Collector) (prometheus.Collector, error) {
	if err := reg.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return already.ExistingCollector, nil
		}
		return nil, err
	}
	return c, nil
}

// IncRequest counts an issued request.
func (p *PrometheusCollector) IncRequest(op string) {
	p.requests.WithLabelValues(op).Inc()
}

// IncRequestError counts a failed request.
func (p *PrometheusCollector) IncRequestError(op, kind string) {
	p.requestErrors.WithLabelValues(op, kind).Inc()
}

// IncReset counts an explicit connection reset.
func (p *PrometheusCollector) IncReset() {
	p.resets.Inc()
}

// IncBufferFlush counts a command buffer flush.
func (p *PrometheusCollector) IncBufferFlush() {
	p.bufferFlushes.Inc()
}

// SetBufferOccupancy records the pending command buffer size.
func (p *PrometheusCollector) SetBufferOccupancy(n int) {
	p.bufferOccupancy.Set(float64(n))
}
