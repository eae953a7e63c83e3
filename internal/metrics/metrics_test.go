package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSync(t *testing.T) {
	m := New()

	m.RecordSync("Indeed", "PARTIAL", 3, 2, 150*time.Millisecond)
	m.RecordSync("Indeed", "SUCCESS", 0, 5, 100*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncRuns.WithLabelValues("Indeed", "PARTIAL")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.CandidatesImported.WithLabelValues("Indeed")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.CandidatesSkipped.WithLabelValues("Indeed")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordSync("Indeed", "FAILED", 0, 0, time.Second)
		m.RecordTokenRefresh("failure")
		m.RecordHire()
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.RecordTokenRefresh("success")
	m.RecordHire()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `recruitsync_token_refresh_total{result="success"} 1`)
	assert.Contains(t, rec.Body.String(), "recruitsync_hires_total 1")
}
