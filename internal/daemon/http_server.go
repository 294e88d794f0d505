package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/docmerge/internal/logfields"
	"git.home.luguber.info/inful/docmerge/internal/metrics"
	"git.home.luguber.info/inful/docmerge/internal/state"
)

// httpServer exposes daemon health, metrics, and recent run history.
type httpServer struct {
	server *http.Server
}

func newHTTPServer(listen string, recorder *metrics.PrometheusRecorder, store *state.Store) *httpServer {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", recorder.Handler())
	mux.HandleFunc("/runs", func(w http.ResponseWriter, r *http.Request) {
		records, err := store.RecentRuns(r.Context(), 20)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(records)
	})

	return &httpServer{
		server: &http.Server{
			Addr:              listen,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

func (s *httpServer) serve() {
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("HTTP server failed", logfields.Error(err))
	}
}

func (s *httpServer) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(ctx)
}
