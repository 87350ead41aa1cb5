package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"answer-gateway/internal/transport"
	"answer-gateway/internal/usecase"
)

const maxWSMessageBytes = 64 << 10

type wsErrorMessage struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// askWebSocket serves the single-question endpoint over one WebSocket
// exchange: the client sends {"question": ...} and receives the answer as
// {"text": ...} messages followed by {"done": true}.
func (h *Handler) askWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		loggerFrom(r.Context(), h.logger).InfoContext(r.Context(), "websocket upgrade failed", slog.Any("error", err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxWSMessageBytes)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	logger := loggerFrom(ctx, h.logger)

	var req askRequest
	if err := conn.ReadJSON(&req); err != nil {
		_ = conn.WriteJSON(wsErrorMessage{Error: string(usecase.ErrorInvalidRequest), Message: "invalid_body"})
		_ = transport.CloseWebSocket(conn, websocket.CloseUnsupportedData, "invalid request")
		return
	}

	// Any further read means the client went away or broke protocol; either
	// way the answer is no longer wanted.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	s, err := h.svc.Ask(ctx, usecase.AskInput{Question: req.Question})
	if err != nil {
		if errors.Is(err, usecase.ErrClientGone) || ctx.Err() != nil {
			logger.InfoContext(ctx, "client disconnected before streaming", slog.Any("error", err))
			return
		}
		code, _ := mapError(err)
		var uerr *usecase.Error
		reason := "unexpected"
		if errors.As(err, &uerr) {
			reason = uerr.Reason
		}
		logger.InfoContext(ctx, "websocket request rejected", slog.String("reason", reason))
		_ = conn.WriteJSON(wsErrorMessage{Error: string(code), Message: reason})
		_ = transport.CloseWebSocket(conn, websocket.ClosePolicyViolation, reason)
		return
	}
	h.finishStream(r.WithContext(ctx), s, transport.WriteWebSocket(conn, s))
}
