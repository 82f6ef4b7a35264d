// Package server exposes the symdiff tools over HTTP for agent frameworks.
//
//	POST /tool    execute one tool call
//	POST /batch   execute several tool calls concurrently
//	GET  /schema  tool schema for agent registration
//	GET  /health  liveness check
//	GET  /metrics Prometheus metrics, when enabled
package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/njchilds90/symdiff"
	"github.com/njchilds90/symdiff/internal/config"
)

// Server routes tool calls to the symdiff engines.
type Server struct {
	cfg      *config.Config
	log      *slog.Logger
	metrics  *Metrics
	validate *validator.Validate
	router   chi.Router
}

// BatchRequest is the body of POST /batch.
type BatchRequest struct {
	Calls []symdiff.ToolRequest `json:"calls" validate:"required,min=1,dive"`
}

// BatchResponse holds one response per call, in request order.
type BatchResponse struct {
	Results []symdiff.ToolResponse `json:"results"`
}

// New builds a server for cfg. A nil metrics disables the /metrics route.
func New(cfg *config.Config, logger *slog.Logger, metrics *Metrics) *Server {
	s := &Server{
		cfg:      cfg,
		log:      logger,
		metrics:  metrics,
		validate: validator.New(),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(accessLog(s.log))
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	r.Post("/tool", s.handleTool)
	r.Post("/batch", s.handleBatch)
	r.Get("/schema", s.handleSchema)
	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on the configured address until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		srv.SetKeepAlivesEnabled(false)
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleTool(w http.ResponseWriter, r *http.Request) {
	var req symdiff.ToolRequest
	if !s.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.call(req))
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Calls) > s.cfg.Limits.MaxBatch {
		writeError(w, http.StatusBadRequest, errors.Errorf("batch of %d calls exceeds limit %d", len(req.Calls), s.cfg.Limits.MaxBatch))
		return
	}
	if s.metrics != nil {
		s.metrics.ObserveBatch(len(req.Calls))
	}

	results := make([]symdiff.ToolResponse, len(req.Calls))
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(s.cfg.Limits.BatchConcurrency)
	for i, call := range req.Calls {
		i, call := i, call
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = s.call(call)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.WarnContext(r.Context(), "batch aborted", "error", err, "calls", len(req.Calls))
		writeError(w, http.StatusServiceUnavailable, errors.Wrap(err, "batch aborted"))
		return
	}
	writeJSON(w, http.StatusOK, BatchResponse{Results: results})
}

func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, symdiff.MCPToolSpec())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// call runs one tool call and records it.
func (s *Server) call(req symdiff.ToolRequest) symdiff.ToolResponse {
	start := time.Now()
	resp := symdiff.HandleToolCallOpts(req, symdiff.ToolOptions{
		MaxDepth: s.cfg.Limits.MaxDepth,
		MaxOrder: s.cfg.Limits.MaxOrder,
	})
	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.ObserveTool(req.Tool, resp, elapsed)
	}
	if resp.Error != "" {
		s.log.Debug("tool failed", "tool", req.Tool, "kind", resp.Kind, "error", resp.Error)
	}
	return resp
}

// decode reads one JSON value into v and validates it. On failure the error
// response is already written.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Limits.MaxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return false
		}
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid JSON"))
		return false
	}
	if dec.More() {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON: trailing data"))
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid request"))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, symdiff.ToolResponse{Error: err.Error(), Kind: "bad_request"})
}
