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

func TestRecorderCounts(t *testing.T) {
	r := New(false)

	r.ObserveAudit("mobile", "ok")
	r.ObserveAudit("mobile", "ok")
	r.ObserveAudit("desktop", "provider_timeout")
	r.AddPruned(3)
	r.AddPruned(0)
	r.IncRateLimited()
	r.ObserveBatchSite("failed")
	r.ObserveProvider("mobile", 1500*time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(r.audits.WithLabelValues("mobile", "ok")), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(r.audits.WithLabelValues("desktop", "provider_timeout")), 0.001)
	assert.InDelta(t, 3, testutil.ToFloat64(r.pruned), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(r.rateLimited), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(r.batchSites.WithLabelValues("failed")), 0.001)
	assert.Equal(t, 1, testutil.CollectAndCount(r.providerLatency))
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveAudit("mobile", "ok")
		r.ObserveProvider("mobile", time.Second)
		r.AddPruned(1)
		r.IncRateLimited()
		r.ObserveBatchSite("ok")
	})
}

func TestHandler(t *testing.T) {
	r := New(true)
	r.ObserveAudit("mobile", "ok")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pagepulse_audits_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
