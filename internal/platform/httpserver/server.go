package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	grantsservice "ensgrants/contexts/funding/grants-service"
	httpadapter "ensgrants/contexts/funding/grants-service/adapters/http"
	grantserrors "ensgrants/contexts/funding/grants-service/domain/errors"
	grantshttp "ensgrants/contexts/funding/grants-service/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "ensgrants/internal/platform/httpserver/docs"
)

const (
	defaultMaxBodyBytes = 1 << 20
	unknownMethodLabel  = "unknown"
)

// Options carries the transport knobs resolved from config.
type Options struct {
	Addr          string
	MaxBodyBytes  int64
	EnableSwagger bool
	// Health is consulted by GET /healthz. Nil means always healthy.
	Health func(ctx context.Context) error
}

type Server struct {
	mux     *http.ServeMux
	logger  *slog.Logger
	opts    Options
	grants  grantsservice.Module
	metrics *Metrics
	server  *http.Server
}

func New(grants grantsservice.Module, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		opts:    opts,
		grants:  grants,
		metrics: NewMetrics(),
	}
	s.registerRoutes()
	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed mux wrapped with the CORS headers every
// response carries.
func (s *Server) Handler() http.Handler {
	return withCORS(s.mux)
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.opts.Addr,
	)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server stopping",
		"event", "http_server_stopping",
		"module", "internal/platform/httpserver",
		"layer", "platform",
	)
	return s.server.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	if s.opts.EnableSwagger {
		s.mux.Handle("GET /swagger/", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}
	s.mux.Handle("GET /metrics", s.metrics.Handler())
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("OPTIONS /", s.handlePreflight)
	s.mux.HandleFunc("POST /rpc", s.handleRPC)
	s.mux.HandleFunc("POST /{$}", s.handleRPC)
	s.mux.HandleFunc("/", s.handleNotFound)
}

// handleRPC godoc
// @Summary Signed grants mutation
// @Description Dispatches create_round or create_grant by the body's method tag.
// @Accept json
// @Produce json
// @Param request body grantshttp.CreateGrantRequest true "create_grant body; create_round uses roundData instead of grantData"
// @Success 201 {object} grantshttp.CreateGrantResponse
// @Failure 400 {object} grantshttp.ErrorResponse
// @Failure 401 {object} grantshttp.ErrorResponse
// @Failure 404 {object} grantshttp.ErrorResponse
// @Failure 500 {object} grantshttp.ErrorResponse
// @Router /rpc [post]
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		status := writeGrantsError(w, http.StatusBadRequest, "malformed_request", "request body could not be read")
		s.observe(unknownMethodLabel, status, started, err)
		return
	}

	method, resp, err := s.grants.Dispatcher.Dispatch(r.Context(), body)
	label := metricMethod(method)
	if err != nil {
		status := writeGrantsDomainError(w, err)
		s.observe(label, status, started, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
	s.observe(label, http.StatusCreated, started, nil)
}

func (s *Server) handlePreflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "ok")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.opts.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.opts.Health(ctx); err != nil {
			s.logger.Warn("health check failed",
				"event", "http_health_check_failed",
				"module", "internal/platform/httpserver",
				"layer", "platform",
				"error", err.Error(),
			)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeGrantsError(w, http.StatusNotFound, "not_found", "no route for "+r.Method+" "+r.URL.Path)
}

func (s *Server) observe(method string, status int, started time.Time, err error) {
	elapsed := time.Since(started)
	s.metrics.Observe(method, status, elapsed)

	attrs := []any{
		"event", "grants_rpc_completed",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"method", method,
		"status", status,
		"duration_ms", elapsed.Milliseconds(),
	}
	if err != nil {
		attrs = append(attrs, "error", err.Error())
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("grants rpc failed", attrs...)
		return
	}
	s.logger.Info("grants rpc completed", attrs...)
}

func metricMethod(method string) string {
	switch method {
	case httpadapter.MethodCreateRound, httpadapter.MethodCreateGrant:
		return method
	default:
		return unknownMethodLabel
	}
}

// writeGrantsDomainError maps a handler error to its response and returns
// the status written.
func writeGrantsDomainError(w http.ResponseWriter, err error) int {
	var storeErr *grantserrors.StoreError
	switch {
	case errors.Is(err, grantserrors.ErrUnknownMethod):
		return writeGrantsError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, grantserrors.ErrMalformedRequest):
		return writeGrantsError(w, http.StatusBadRequest, "malformed_request", err.Error())
	case errors.Is(err, grantserrors.ErrSchemaVersionMismatch):
		return writeGrantsError(w, http.StatusBadRequest, "schema_version_mismatch", err.Error())
	case errors.Is(err, grantserrors.ErrRoundNotFound):
		return writeGrantsError(w, http.StatusBadRequest, "round_not_found", err.Error())
	case errors.Is(err, grantserrors.ErrNumericOverflow):
		return writeGrantsError(w, http.StatusBadRequest, "numeric_overflow", err.Error())
	case errors.Is(err, grantserrors.ErrInvalidRoundWindow):
		return writeGrantsError(w, http.StatusBadRequest, "invalid_round_window", err.Error())
	case errors.Is(err, grantserrors.ErrInvalidSignature):
		return writeGrantsError(w, http.StatusUnauthorized, "invalid_signature", err.Error())
	case errors.Is(err, grantserrors.ErrUnauthorized):
		return writeGrantsError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.As(err, &storeErr):
		return writeGrantsError(w, http.StatusInternalServerError, "store_failure", storeErr.Error())
	default:
		return writeGrantsError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeGrantsError(w http.ResponseWriter, status int, code string, message string) int {
	writeJSON(w, status, grantshttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
	return status
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
