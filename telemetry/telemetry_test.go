package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func resetRegistry() {
	registryMu.Lock()
	requestCounter = nil
	errorCounter = nil
	resetCounter = nil
	flushCounter = nil
	occupancyGauge = nil
	registryMu.Unlock()
}

func TestNoopCollector(t *testing.T) {
	collector := Noop()
	require.NotNil(t, collector)
	collector.IncRequest("get")
	collector.IncRequestError("get", "no_servers")
	collector.IncReset()
	collector.IncBufferFlush()
	collector.SetBufferOccupancy(42)
}

func TestPrometheusCollectorRegistersAndReuses(t *testing.T) {
	resetRegistry()

	reg := prometheus.NewRegistry()
	collector, err := NewPrometheusCollector(reg)
	require.NoError(t, err)
	require.NotNil(t, collector)

	collector.IncRequest("get")
	collector.IncRequest("get")
	collector.IncRequestError("set", "no_servers")
	collector.IncReset()

	metrics, err := reg.Gather()
	require.NoError(t, err)
	requireCounterValue(t, metrics, "display_ds9_requests_total", 2)
	requireCounterValue(t, metrics, "display_ds9_request_errors_total", 1)
	requireCounterValue(t, metrics, "display_ds9_connection_resets_total", 1)

	again, err := NewPrometheusCollector(reg)
	require.NoError(t, err)
	require.Same(t, collector.requests, again.requests)

	again.IncRequest("get")

	metrics, err = reg.Gather()
	require.NoError(t, err)
	requireCounterValue(t, metrics, "display_ds9_requests_total", 3)
}

func TestPrometheusCollectorBufferMetrics(t *testing.T) {
	resetRegistry()

	reg := prometheus.NewRegistry()
	collector, err := NewPrometheusCollector(reg)
	require.NoError(t, err)

	collector.IncBufferFlush()
	collector.SetBufferOccupancy(128)

	metrics, err := reg.Gather()
	require.NoError(t, err)
	requireCounterValue(t, metrics, "display_ds9_command_buffer_flushes_total", 1)

	gauge := findFamily(t, metrics, "display_ds9_command_buffer_occupancy_bytes")
	require.Len(t, gauge.Metric, 1)
	require.NotNil(t, gauge.Metric[0].Gauge)
	require.Equal(t, 128.0, gauge.Metric[0].Gauge.GetValue())
}

func findFamily(t *testing.T, families []*dto.MetricFamily, name string) *dto.MetricFamily {
	t.Helper()
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("metric family %s not found", name)
	return nil
}

func requireCounterValue(t *testing.T, families []*dto.MetricFamily, name string, value float64) {
	t.Helper()
	mf := findFamily(t, families, name)
	require.Len(t, mf.Metric, 1)
	require.NotNil(t, mf.Metric[0].Counter)
	require.Equal(t, value, mf.Metric[0].Counter.GetValue())
}
