package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"telemetry_logger/internal/logging"
	"telemetry_logger/internal/metrics"
	"telemetry_logger/internal/models"
	"telemetry_logger/internal/storage"
)

const defaultBufferSize = 256

// Interceptor captures telemetry for every request/response cycle and hands
// it to the configured sink. Records are queued on a buffered channel and
// written by a single background goroutine, so the handler path never waits
// on storage and writes land in completion order. Exactly one write is
// attempted per request; failures go to the process log and never touch the
// response, which has already been sent.
type Interceptor struct {
	sink      storage.Sink
	collector *metrics.Collector

	logCh  chan *models.LogRecord
	doneCh chan struct{}
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewInterceptor creates an interceptor and starts its writer goroutine.
func NewInterceptor(sink storage.Sink, collector *metrics.Collector) *Interceptor {
	i := &Interceptor{
		sink:      sink,
		collector: collector,
		logCh:     make(chan *models.LogRecord, defaultBufferSize),
		doneCh:    make(chan struct{}),
	}

	i.wg.Add(1)
	go i.run()

	return i
}

// Middleware wraps a handler so that every completed response produces one
// log record. The wrapped handler runs unchanged; record capture happens
// after it returns and the write itself is asynchronous.
func (i *Interceptor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		snap := i.collector.Snapshot(start)
		rec := &models.LogRecord{
			RequestID:      uuid.New(),
			Method:         r.Method,
			URL:            r.URL.RequestURI(),
			StatusCode:     sw.status,
			ResponseTimeMs: snap.ResponseTimeMs,
			Timestamp:      time.Now().UTC(),
			MemoryUsage:    snap.Memory,
			CPUUsage:       snap.CPU,
		}

		select {
		case i.logCh <- rec:
		default:
			logging.Errorf("telemetry queue full, dropping record for %s %s", rec.Method, rec.URL)
		}
	})
}

// run is the single writer goroutine. It drains remaining records on
// shutdown before exiting.
func (i *Interceptor) run() {
	defer i.wg.Done()

	for {
		select {
		case rec := <-i.logCh:
			i.write(rec)
		case <-i.doneCh:
			for {
				select {
				case rec := <-i.logCh:
					i.write(rec)
				default:
					return
				}
			}
		}
	}
}

func (i *Interceptor) write(rec *models.LogRecord) {
	if err := i.sink.Write(context.Background(), rec); err != nil {
		logging.Errorf("failed to persist telemetry for %s %s: %v", rec.Method, rec.URL, err)
	}
}

// Shutdown stops the writer goroutine after flushing queued records. Call it
// from the application's graceful shutdown handler.
func (i *Interceptor) Shutdown() {
	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		return
	}
	i.closed = true
	i.mu.Unlock()

	close(i.doneCh)
	i.wg.Wait()
}

// statusWriter records the final status code written to the client.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}
