package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Dosada05/tournament-hub/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAccessLogKeepsLatencyLabelsBounded(t *testing.T) {
	r := chi.NewRouter()
	r.Use(AccessLog(zap.NewNop()))
	r.Get("/tournaments/{tournamentID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	serve := func(path string) int {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec.Code
	}

	require.Equal(t, http.StatusNotFound, serve("/warmup-miss"))
	require.Equal(t, http.StatusOK, serve("/tournaments/warmup"))
	before := testutil.CollectAndCount(metrics.APILatency)

	for i := 0; i < 50; i++ {
		require.Equal(t, http.StatusNotFound, serve(fmt.Sprintf("/random-%d", i)))
		require.Equal(t, http.StatusOK, serve(fmt.Sprintf("/tournaments/%d", i)))
	}

	require.Equal(t, before, testutil.CollectAndCount(metrics.APILatency))
}
