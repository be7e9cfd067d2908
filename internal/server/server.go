// Package server exposes the orchestrator over HTTP/JSON and pushes state
// changes to WebSocket clients.
package server

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	apperrors "crypto-advisor/internal/errors"
	"crypto-advisor/internal/logging"
	"crypto-advisor/internal/models"
	"crypto-advisor/internal/orchestrator"
	"crypto-advisor/internal/resilience"
)

// Localizer renders tagged text and errors in the active language.
type Localizer interface {
	T(key string, params map[string]any) string
	Text(text models.Text) string
	Error(err error) string
}

// Server serves the JSON API, the WebSocket feed and health endpoints.
type Server struct {
	addr     string
	orch     *orchestrator.Orchestrator
	loc      Localizer
	health   *resilience.HealthMonitor
	validate *validator.Validate
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// New creates a server listening on addr. health may be nil.
func New(addr string, orch *orchestrator.Orchestrator, loc Localizer, health *resilience.HealthMonitor, logger zerolog.Logger) *Server {
	if addr == "" {
		addr = ":8080"
	}
	return &Server{
		addr:     addr,
		orch:     orch,
		loc:      loc,
		health:   health,
		validate: validator.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logging.WithComponent(logger, "server"),
	}
}

// Handler returns the routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/search", s.handleSearch)
	mux.HandleFunc("POST /api/search/focus", s.handleSearchFocus)
	mux.HandleFunc("POST /api/search/dismiss", s.handleSearchDismiss)
	mux.HandleFunc("POST /api/select", s.handleSelect)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	mux.HandleFunc("POST /api/advice", s.handleAdvice)
	mux.HandleFunc("POST /api/alerts", s.handleAddAlert)
	mux.HandleFunc("DELETE /api/alerts/{id}", s.handleRemoveAlert)
	mux.HandleFunc("DELETE /api/triggered/{id}", s.handleDismissTriggered)
	mux.HandleFunc("DELETE /api/error", s.handleClearError)
	mux.HandleFunc("POST /api/view", s.handleView)
	mux.HandleFunc("POST /api/language", s.handleLanguage)
	mux.HandleFunc("POST /api/social", s.handleSocial)
	mux.HandleFunc("GET /api/experts", s.handleExperts)
	mux.HandleFunc("GET /api/translate", s.handleTranslate)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	if s.health != nil {
		mux.HandleFunc("GET /healthz", s.health.HealthHTTPHandler())
		mux.HandleFunc("GET /livez", s.health.LivenessHTTPHandler())
	}

	return s.logRequests(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return apperrors.Wrap(err, "http server")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info().Msg("HTTP server shutting down")
	return srv.Shutdown(shutdownCtx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets the WebSocket upgrade reach the underlying connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	return h.Hijack()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		reqLogger := s.logger.With().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()
		next.ServeHTTP(rec, r.WithContext(logging.WithLogger(r.Context(), reqLogger)))
		reqLogger.Debug().
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Kind    apperrors.Kind `json:"kind"`
	Key     string         `json:"key,omitempty"`
	Message string         `json:"message"`
}

func statusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindRateLimited:
		return http.StatusTooManyRequests
	case apperrors.KindInFlight:
		return http.StatusConflict
	case apperrors.KindPartialData, apperrors.KindMalformedResponse:
		return http.StatusBadGateway
	case apperrors.KindBackendUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	te := apperrors.AsTagged(err)
	status := statusFor(te.Kind)
	if status >= http.StatusInternalServerError {
		logger := logging.FromContext(r.Context())
		logger.Warn().Err(err).Int("status", status).Msg("Request failed")
	}
	s.writeJSON(w, status, errorBody{
		Kind:    te.Kind,
		Key:     te.Key,
		Message: s.loc.Error(err),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("Failed to write response")
	}
}

// decode reads a JSON body into v and validates it.
func (s *Server) decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.New(apperrors.KindValidation, "errors.invalidInput", nil)
	}
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return apperrors.NewValidationError(verrs[0].Field(), "errors.invalidInput")
		}
		return apperrors.New(apperrors.KindValidation, "errors.invalidInput", nil)
	}
	return nil
}
