package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"answer-gateway/internal/domain"
	"answer-gateway/internal/observability"
	"answer-gateway/internal/stream"
	"answer-gateway/internal/transport"
	"answer-gateway/internal/usecase"
)

const (
	correlationHeader = "X-Correlation-Id"
	maxBodyBytes      = 1 << 20
	errorNotFound     = "NOT_FOUND"

	// statusClientClosed records requests abandoned before a response.
	statusClientClosed = 499
)

type Service interface {
	Chat(ctx context.Context, in usecase.ChatInput) (*stream.Stream, error)
	Ask(ctx context.Context, in usecase.AskInput) (*stream.Stream, error)
	GenerateUI(ctx context.Context, in usecase.UIInput) (domain.UIGenerationResult, error)
	Health(ctx context.Context) usecase.HealthStatus
}

type Options struct {
	// AllowedOrigins lists CORS origins. "*" allows any origin.
	AllowedOrigins []string
	// Diagnostics adds error details to 5xx bodies. Never enable in production.
	Diagnostics bool
	Logger      *slog.Logger
}

type Handler struct {
	svc      Service
	opts     Options
	logger   *slog.Logger
	mux      *http.ServeMux
	routes   http.Handler
	upgrader websocket.Upgrader
}

type chatRequest struct {
	Messages []domain.ChatMessage `json:"messages"`
}

type askRequest struct {
	Question string `json:"question"`
}

type uiRequest struct {
	Prompt string `json:"prompt"`
	Type   string `json:"type,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
}

func NewHandler(svc Service, opts Options) (*Handler, error) {
	if svc == nil {
		return nil, errors.New("handler: service must not be nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{svc: svc, opts: opts, logger: logger, mux: http.NewServeMux()}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return h.originAllowed(r.Header.Get("Origin")) },
	}

	h.route("POST /api/chat", "chat", h.chat)
	h.route("POST /api/ask-popsci", "ask", h.ask)
	h.route("GET /api/ask-popsci/ws", "ask_ws", h.askWebSocket)
	h.route("POST /api/generate-ui", "generate_ui", h.generateUI)
	h.route("GET /api/health", "health", h.health)
	h.route("/api/", "not_found", h.notFound)

	h.routes = cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", correlationHeader},
		ExposedHeaders: []string{correlationHeader},
	}).Handler(h.mux)
	return h, nil
}

func (h *Handler) route(pattern, name string, fn http.HandlerFunc) {
	h.mux.Handle(pattern, observability.Instrument(name, fn))
}

// ServeHTTP applies correlation IDs and panic recovery around the
// CORS-wrapped API routes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	corrID := strings.TrimSpace(r.Header.Get(correlationHeader))
	if corrID == "" {
		corrID = newCorrelationID()
	}
	w.Header().Set(correlationHeader, corrID)
	logger := h.logger.With(slog.String("correlation_id", corrID))
	r = r.WithContext(withLogger(r.Context(), logger))

	defer func() {
		if rec := recover(); rec != nil {
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			h.writeError(w, r, newPanicError(rec))
		}
	}()

	logger.DebugContext(r.Context(), "request", slog.String("method", r.Method), slog.String("path", r.URL.Path))
	h.routes.ServeHTTP(w, r)
}

func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	s, err := h.svc.Chat(r.Context(), usecase.ChatInput{Messages: req.Messages})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.finishStream(r, s, transport.WriteChunked(w, s))
}

func (h *Handler) ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	s, err := h.svc.Ask(r.Context(), usecase.AskInput{Question: req.Question})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.finishStream(r, s, transport.WriteSSE(w, s))
}

func (h *Handler) generateUI(w http.ResponseWriter, r *http.Request) {
	var req uiRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.svc.GenerateUI(r.Context(), usecase.UIInput{Prompt: req.Prompt, Type: req.Type})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Health(r.Context()))
}

func (h *Handler) notFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: errorNotFound, Message: "Not found"})
}

// finishStream logs how a written stream ended. The response is already
// committed, so nothing here can change the status.
func (h *Handler) finishStream(r *http.Request, s *stream.Stream, writeErr error) {
	ctx := r.Context()
	logger := loggerFrom(ctx, h.logger)
	switch {
	case ctx.Err() != nil:
		logger.InfoContext(ctx, "client disconnected mid-stream", slog.String("origin", s.Origin()))
	case writeErr != nil:
		logger.WarnContext(ctx, "stream write failed", slog.String("origin", s.Origin()), slog.Any("error", writeErr))
	case s.Err() != nil:
		logger.WarnContext(ctx, "provider stream ended early",
			slog.String("origin", s.Origin()),
			slog.String("reason", "provider_mid_stream_error"),
			slog.Any("error", s.Err()),
		)
	default:
		logger.InfoContext(ctx, "stream complete", slog.String("origin", s.Origin()), slog.String("kind", string(s.Kind())))
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &usecase.Error{Code: usecase.ErrorInvalidRequest, Reason: "invalid_body", Err: err}
	}
	return nil
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	logger := loggerFrom(r.Context(), h.logger)
	if clientGone(r, err) {
		logger.InfoContext(r.Context(), "client disconnected before streaming", slog.Any("error", err))
		w.WriteHeader(statusClientClosed)
		return
	}

	code, status := mapError(err)
	resp := errorResponse{Error: string(code), Message: http.StatusText(status)}

	var uerr *usecase.Error
	reason := "unexpected"
	if errors.As(err, &uerr) {
		reason = uerr.Reason
	}
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", slog.String("reason", reason), slog.Any("error", err))
		if h.opts.Diagnostics {
			resp.Details = err.Error()
		}
	} else {
		logger.InfoContext(r.Context(), "request rejected", slog.String("reason", reason))
	}
	writeJSON(w, status, resp)
}

func clientGone(r *http.Request, err error) bool {
	return errors.Is(err, usecase.ErrClientGone) || r.Context().Err() != nil
}

func mapError(err error) (usecase.ErrorCode, int) {
	var uerr *usecase.Error
	if !errors.As(err, &uerr) {
		return usecase.ErrorInternal, http.StatusInternalServerError
	}
	switch uerr.Code {
	case usecase.ErrorInvalidRequest:
		return uerr.Code, http.StatusBadRequest
	case usecase.ErrorUpstreamDegraded:
		return uerr.Code, http.StatusBadGateway
	default:
		return usecase.ErrorInternal, http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// originAllowed gates WebSocket upgrades, which CORS does not cover. It
// follows the CORS policy: an empty list allows every origin and matching
// ignores case.
func (h *Handler) originAllowed(origin string) bool {
	if origin == "" || len(h.opts.AllowedOrigins) == 0 {
		return true
	}
	return slices.ContainsFunc(h.opts.AllowedOrigins, func(o string) bool {
		return o == "*" || strings.EqualFold(o, origin)
	})
}

func newPanicError(rec any) error {
	return &usecase.Error{Code: usecase.ErrorInternal, Reason: "panic", Err: fmt.Errorf("handler: panic: %v", rec)}
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func loggerFrom(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return fallback
}

var newCorrelationID = func() string {
	return uuid.NewString()
}
