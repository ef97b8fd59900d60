package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/leadline-ai/leadline/server/metrics"
	"github.com/leadline-ai/leadline/server/middleware"
)

func TestPrometheusMetrics(t *testing.T) {
	m := metrics.NewMetrics()

	tests := []struct {
		name           string
		handler        http.HandlerFunc
		expectedCode   int
		expectedStatus string
		errorType      string
	}{
		{
			name: "success request",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
			expectedCode:   http.StatusOK,
			expectedStatus: "200",
		},
		{
			name: "client error request",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			},
			expectedCode:   http.StatusBadRequest,
			expectedStatus: "400",
			errorType:      "client_error",
		},
		{
			name: "server error request",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			expectedCode:   http.StatusInternalServerError,
			expectedStatus: "500",
			errorType:      "server_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.PrometheusMetrics(m)(tt.handler)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

			assert.Equal(t, tt.expectedCode, rec.Code)

			requestCount := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/", tt.expectedStatus))
			assert.Equal(t, float64(1), requestCount)

			// Active requests drain back to 0 once the handler returns
			activeRequests := testutil.ToFloat64(m.ActiveRequests.WithLabelValues("/"))
			assert.Equal(t, float64(0), activeRequests)

			if tt.errorType != "" {
				errorCount := testutil.ToFloat64(m.ErrorsTotal.WithLabelValues(tt.errorType))
				assert.Equal(t, float64(1), errorCount)
			}
		})
	}
}
