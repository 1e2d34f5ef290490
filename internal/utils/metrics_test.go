package utils

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gathered(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			for _, lp := range m.GetLabel() {
				key += " " + lp.GetValue()
			}
			switch {
			case m.GetCounter() != nil:
				values[key] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[key] = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				values[key] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return values
}

func TestAPIMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	am := NewAPIMetrics(reg)

	am.RecordAPIRequest("/api/scenarios", "GET", 200, 10*time.Millisecond)
	am.RecordAPIRequest("/api/scenarios", "GET", 204, time.Millisecond)
	am.RecordAPIRequest("", "GET", 404, time.Millisecond)
	am.RecordError("NOT_FOUND", "api")
	am.SetConnections(3)

	values := gathered(t, reg)
	assert.Equal(t, 2.0, values["reflex_api_requests_total GET /api/scenarios 2xx"])
	assert.Equal(t, 1.0, values["reflex_api_requests_total GET unmatched 4xx"])
	assert.Equal(t, 2.0, values["reflex_api_request_duration_seconds /api/scenarios"])
	assert.Equal(t, 1.0, values["reflex_errors_total api NOT_FOUND"])
	assert.Equal(t, 3.0, values["reflex_viewer_connections"])
}
