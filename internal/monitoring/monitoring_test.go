package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncPages("actor", "ok")
		m.IncErrors("fetch_failed")
		m.AddRecords(3)
		m.IncActingFallback()
		m.ObserveFetch("actor", 0)
	})
}

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.IncPages("actor", "ok")
	m.IncPages("actor", "ok")
	m.IncErrors("structure_not_found")
	m.AddRecords(5)
	m.IncActingFallback()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PagesTotal.WithLabelValues("actor", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ErrorsTotal.WithLabelValues("structure_not_found")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.RecordsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActingFallbackTotal))
}

func TestServer_Routes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.IncActingFallback()

	s := NewServer(":0", reg, zap.NewNop())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "crawler_acting_table_fallback_total 1"))
}
