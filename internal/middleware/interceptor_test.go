package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telemetry_logger/internal/metrics"
	"telemetry_logger/internal/models"
	"telemetry_logger/internal/storage"
)

func newFileSink(t *testing.T) (*storage.FileSink, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logs", "log.txt")
	sink, err := storage.NewFileSink(path, nil)
	require.NoError(t, err)
	return sink, path
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	})
}

func TestInterceptorRecordsRequestsInOrder(t *testing.T) {
	sink, _ := newFileSink(t)
	i := NewInterceptor(sink, metrics.NewCollector())
	handler := i.Middleware(okHandler())

	requests := []struct {
		method string
		url    string
	}{
		{"GET", "/first?page=1"},
		{"POST", "/second"},
		{"DELETE", "/third/42"},
	}

	for _, req := range requests {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(req.method, req.url, nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	}

	i.Shutdown()

	records, err := sink.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	for n, rec := range records {
		assert.Equal(t, requests[n].method, rec.Method)
		assert.Equal(t, requests[n].url, rec.URL)
		assert.Equal(t, http.StatusOK, rec.StatusCode)
		assert.GreaterOrEqual(t, rec.ResponseTimeMs, 0.0)
		assert.False(t, rec.Timestamp.IsZero())
		assert.NotEqual(t, rec.RequestID.String(), "00000000-0000-0000-0000-000000000000")
	}
}

func TestInterceptorCapturesStatusCode(t *testing.T) {
	sink, _ := newFileSink(t)
	i := NewInterceptor(sink, metrics.NewCollector())
	handler := i.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	i.Shutdown()

	records, err := sink.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, http.StatusNotFound, records[0].StatusCode)
}

func TestInterceptorEncryptedEndToEnd(t *testing.T) {
	key := make([]byte, 32)
	for n := range key {
		key[n] = byte(n + 1)
	}
	codec, err := storage.NewEncryption(key)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "log.txt")
	sink, err := storage.NewFileSink(path, codec)
	require.NoError(t, err)

	i := NewInterceptor(sink, metrics.NewCollector())
	handler := i.Middleware(okHandler())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/customers/secret-name", nil))
	i.Shutdown()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "/customers/secret-name")

	records, err := sink.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "/customers/secret-name", records[0].URL)
}

// failingSink simulates a backend whose every write fails.
type failingSink struct{}

func (failingSink) Write(context.Context, *models.LogRecord) error {
	return errors.New("backend unavailable")
}

func (failingSink) Close() error { return nil }

func TestInterceptorSinkFailureDoesNotAffectResponse(t *testing.T) {
	i := NewInterceptor(failingSink{}, metrics.NewCollector())
	server := httptest.NewServer(i.Middleware(okHandler()))
	defer server.Close()

	resp, err := http.Get(server.URL + "/doomed")
	require.NoError(t, err)
	defer resp.Body.Close()

	// The response is fully sent even though the write will fail.
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Draining the failed write must not panic or block.
	i.Shutdown()
}

func TestInterceptorShutdownIsIdempotent(t *testing.T) {
	sink, _ := newFileSink(t)
	i := NewInterceptor(sink, metrics.NewCollector())

	i.Shutdown()
	i.Shutdown()
}
