package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/postcraft-api/internal/generation"
)

func TestObserverRecordsRetryLoop(t *testing.T) {
	t.Parallel()

	r := New()
	op := generation.OperationGenerate

	r.AttemptFinished(op, generation.ServiceUnavailable.String())
	r.RetryScheduled(op, generation.ServiceUnavailable, time.Second)
	r.AttemptFinished(op, generation.ServiceUnavailable.String())
	r.RetryScheduled(op, generation.ServiceUnavailable, 2*time.Second)
	r.AttemptFinished(op, "success")
	r.CallFinished(op, 3, 3*time.Second, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.attempts.WithLabelValues(string(op), "service_unavailable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.attempts.WithLabelValues(string(op), "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.retries.WithLabelValues(string(op), "service_unavailable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.calls.WithLabelValues(string(op), "success")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.callAttempts))
}

func TestObserverRecordsTerminalFailure(t *testing.T) {
	t.Parallel()

	r := New()
	op := generation.OperationSummarize
	terr := &generation.TerminalError{
		Classification: generation.InvalidCredential,
		Operation:      op,
		Attempts:       1,
	}

	r.AttemptFinished(op, generation.InvalidCredential.String())
	r.CallFinished(op, 1, 150*time.Millisecond, terr)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.calls.WithLabelValues(string(op), "invalid_credential")))
	assert.Equal(t, 0, testutil.CollectAndCount(r.retries))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	t.Parallel()

	r := New()
	router := chi.NewRouter()
	router.Use(r.Middleware)
	router.Get("/drafts/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, path := range []string{"/drafts/1", "/drafts/2", "/healthz"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(r.httpRequests.WithLabelValues("/drafts/{id}", "GET", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.httpRequests.WithLabelValues("/healthz", "GET", "200")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	t.Parallel()

	r := New()
	r.CallFinished(generation.OperationTune, 1, time.Second, nil)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	text := string(body)
	assert.True(t, strings.Contains(text, `postcraft_generation_calls_total{operation="tune",result="success"} 1`), text)
	assert.Contains(t, text, "go_goroutines")
}
