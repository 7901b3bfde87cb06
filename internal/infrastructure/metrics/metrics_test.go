package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveHTTPRequest(http.MethodGet, "/department/{department}", "200", 0.01)
	m.ObserveHTTPRequest(http.MethodGet, "/department/{department}", "200", 0.02)
	m.IncDocumentTransition("Forward", OutcomeSuccess)
	m.IncSignup(OutcomeRejected)
	m.IncLogin("admin", OutcomeSuccess)
	m.IncRateLimitBlocked("/login")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/department/{department}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.documentTransitions.WithLabelValues("Forward", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.signups.WithLabelValues(OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.logins.WithLabelValues("admin", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimitBlocked.WithLabelValues("/login")))
}

func TestMetrics_HandlerExposesCollectors(t *testing.T) {
	m := New()
	m.IncDocumentTransition("Submit", OutcomeSuccess)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `documents_transitions_total{action="Submit",outcome="success"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNew_RegistriesAreIndependent(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}
