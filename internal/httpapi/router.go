package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"telemetry_logger/internal/config"
	"telemetry_logger/internal/metrics"
	"telemetry_logger/internal/middleware"
	"telemetry_logger/internal/storage"
)

// Dependencies aggregates the services the HTTP layer needs. The aggregate is
// built once at startup and passed around explicitly.
type Dependencies struct {
	Sink        storage.Sink
	Interceptor *middleware.Interceptor
}

// NewRouter wires the telemetry pipeline around the given application
// handler. Application routes run behind the interceptor; the operational
// endpoints (/healthz, /logs) are served directly and produce no records of
// their own.
func NewRouter(cfg *config.Config, app http.Handler) (http.Handler, *Dependencies, error) {
	sink, err := storage.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize sink: %w", err)
	}

	interceptor := middleware.NewInterceptor(sink, metrics.NewCollector())

	deps := &Dependencies{
		Sink:        sink,
		Interceptor: interceptor,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/logs", handleLogs(sink))
	mux.Handle("/", interceptor.Middleware(app))

	return mux, deps, nil
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLogs exposes the stored records for the text backend.
func handleLogs(sink storage.Sink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		records, err := storage.ReadStoredLogs(sink)
		switch {
		case errors.Is(err, storage.ErrUnsupported):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, storage.ErrEmptyLog):
			respondWithError(w, http.StatusNotFound, err.Error())
		case err != nil:
			respondWithError(w, http.StatusInternalServerError, err.Error())
		default:
			respondWithJSON(w, http.StatusOK, records)
		}
	}
}
