package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/mutualfund-backend/internal/metrics"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func serve(t *testing.T, db Pinger, path string) *httptest.ResponseRecorder {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.NewSync(reg)
	m.ObserveRecords("updated", 2)

	engine := NewEngine(false, db, reg)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := serve(t, nil, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadyz(t *testing.T) {
	tests := []struct {
		name string
		db   Pinger
		code int
	}{
		{name: "Memory store", db: nil, code: http.StatusOK},
		{name: "Database reachable", db: pingFunc(func(context.Context) error { return nil }), code: http.StatusOK},
		{name: "Database down", db: pingFunc(func(context.Context) error { return errors.New("refused") }), code: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, tt.db, "/readyz")
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestMetrics(t *testing.T) {
	rec := serve(t, nil, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `mutualfund_nav_sync_records_total{outcome="updated"} 2`)
}
