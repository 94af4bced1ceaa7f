package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/pscheid92/postpulse/internal/adapter/metrics"
	apperrors "github.com/pscheid92/postpulse/internal/platform/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRemoteAddr = "1.2.3.4:1234"

// rateLimitedHandler runs the limiter alone, without ErrorHandlingMiddleware, so the 429 must
// come from the limiter itself.
func rateLimitedHandler(ratePerSecond float64, burst int, m *metrics.HTTPMetrics) echo.HandlerFunc {
	mw := newRateLimiter(ratePerSecond, burst, m)
	return mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
}

func callFrom(t *testing.T, handler echo.HandlerFunc, remoteAddr string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	require.NoError(t, handler(echo.New().NewContext(req, rec)))
	return rec
}

func TestRateLimiterAllowsRequestsUnderLimit(t *testing.T) {
	handler := rateLimitedHandler(10, 3, nil)

	for range 3 {
		rec := callFrom(t, handler, testRemoteAddr)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimiterBlocksExcessiveRequests(t *testing.T) {
	handler := rateLimitedHandler(0.01, 1, nil)

	rec := callFrom(t, handler, testRemoteAddr)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = callFrom(t, handler, testRemoteAddr)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "rate limit exceeded", resp.Error)
	assert.Equal(t, apperrors.TypeRateLimited, resp.Type)
	assert.Equal(t, "1.2.3.4", resp.Context["client"])
}

func TestRateLimiterDifferentIPsAreIndependent(t *testing.T) {
	handler := rateLimitedHandler(0.01, 1, nil)

	assert.Equal(t, http.StatusOK, callFrom(t, handler, testRemoteAddr).Code)
	assert.Equal(t, http.StatusOK, callFrom(t, handler, "5.6.7.8:5678").Code)
	assert.Equal(t, http.StatusTooManyRequests, callFrom(t, handler, testRemoteAddr).Code)
}

func TestRateLimiterOnlyGuardsAPI(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})
	srv.config.APIRateLimit = 0.01
	srv.config.APIRateBurst = 1
	// Routes capture the limiter at construction, so rebuild with the tighter settings.
	srv = NewServer(srv.config, srv.app, nil, nil, nil)

	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
		req.RemoteAddr = testRemoteAddr
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	recs := make([]*httptest.ResponseRecorder, 0, 2)
	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", strings.NewReader(`{}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.RemoteAddr = testRemoteAddr
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		recs = append(recs, rec)
	}
	assert.NotEqual(t, http.StatusTooManyRequests, recs[0].Code)
	require.Equal(t, http.StatusTooManyRequests, recs[1].Code, recs[1].Body.String())

	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(recs[1].Body.Bytes(), &resp))
	assert.Equal(t, "rate limit exceeded", resp.Error)
	assert.Equal(t, apperrors.TypeRateLimited, resp.Type)
}

func TestRateLimiterRecordsErrorMetric(t *testing.T) {
	m := metrics.NewHTTPMetrics(prometheus.NewRegistry())
	handler := rateLimitedHandler(0.01, 1, m)

	callFrom(t, handler, testRemoteAddr)
	rec := callFrom(t, handler, testRemoteAddr)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ErrorsTotal.WithLabelValues("rate_limited")))
}
