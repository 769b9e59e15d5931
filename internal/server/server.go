// Package server exposes prediction engines over HTTP in the shape the
// keyboard client expects: GET /output?string=<text> answers with a JSON list
// of exactly three [word, score] pairs.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/robottwo/typeahead/internal/predict"
	"go.uber.org/zap"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = "127.0.0.1:5000"

const (
	defaultPredictTimeout = 10 * time.Second
	shutdownTimeout       = 5 * time.Second
)

// Config holds the server configuration
type Config struct {
	Addr string
	// PredictTimeout bounds one engine call.
	PredictTimeout time.Duration
}

// Server serves predictions from a predict.Predictor.
type Server struct {
	config    Config
	predictor predict.Predictor
	logger    *zap.Logger
	http      *http.Server
}

// New creates a server around predictor.
func New(config Config, predictor predict.Predictor, logger *zap.Logger) *Server {
	if config.Addr == "" {
		config.Addr = DefaultAddr
	}
	if config.PredictTimeout <= 0 {
		config.PredictTimeout = defaultPredictTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		config:    config,
		predictor: predictor,
		logger:    logger,
	}
	s.http = &http.Server{
		Addr:              config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the routed, logged and panic-safe handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/output", getOnly(s.handleOutput))
	mux.HandleFunc("/healthz", getOnly(s.handleHealth))
	mux.HandleFunc("/", s.handleNotFound)
	return s.recoverer(s.logRequests(mux))
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("prediction server listening", zap.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, stopping server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("shutdown timeout, forcing close", zap.Error(err))
			return s.http.Close()
		}
		return nil
	}
}

// entry is one [word, score] pair on the wire.
type entry [2]any

func padEntries(words []string) []entry {
	entries := make([]entry, 0, predict.MaxSuggestions)
	for _, w := range words {
		if len(entries) == predict.MaxSuggestions {
			break
		}
		if w == "" {
			continue
		}
		entries = append(entries, entry{w, 1})
	}
	for len(entries) < predict.MaxSuggestions {
		entries = append(entries, entry{"", 0})
	}
	return entries
}

func (s *Server) handleOutput(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get(predict.QueryParam)
	if !predict.Validate(raw) {
		writeJSON(w, http.StatusOK, []entry{})
		return
	}
	text := predict.Sanitize(raw)
	if text == "" {
		writeJSON(w, http.StatusOK, []entry{})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.config.PredictTimeout)
	defer cancel()

	words, err := s.predictor.Predict(ctx, text)
	if err != nil {
		s.logger.Error("error in prediction", zap.String("text", text), zap.Error(err))
		writeJSON(w, http.StatusOK, []entry{})
		return
	}
	writeJSON(w, http.StatusOK, padEntries(words))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
}

// getOnly answers 405 for anything but GET and HEAD on a known route.
func getOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
			return
		}
		h(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
