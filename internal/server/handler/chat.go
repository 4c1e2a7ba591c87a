package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/polyanalyst/internal/domain"
)

// TextHandler is the text-in/text-out function behind the chat endpoints.
type TextHandler func(ctx context.Context, sessionID, text string) string

// ChatHandler serves the synchronous chat endpoint.
type ChatHandler struct {
	handle   TextHandler
	sessions domain.SessionStore // optional
	logger   *slog.Logger
}

// NewChatHandler creates a ChatHandler. sessions may be nil.
func NewChatHandler(handle TextHandler, sessions domain.SessionStore, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		handle:   handle,
		sessions: sessions,
		logger:   logger.With(slog.String("component", "chat_handler")),
	}
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
}

// Chat handles POST /api/chat: one inbound text, one outbound text. A
// missing session_id starts a new session.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	response := h.handle(r.Context(), req.SessionID, req.Text)

	if h.sessions != nil {
		ex := domain.Exchange{
			ID:       uuid.NewString(),
			Query:    req.Text,
			Response: response,
			At:       time.Now().UTC(),
		}
		if err := h.sessions.Append(r.Context(), req.SessionID, ex); err != nil {
			h.logger.WarnContext(r.Context(), "session append failed",
				slog.String("session", req.SessionID),
				slog.String("error", err.Error()),
			)
		}
	}

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID: req.SessionID,
		Response:  response,
	})
}

// History handles GET /api/sessions/{id}/history.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		writeError(w, http.StatusNotFound, "session history is not configured")
		return
	}

	sessionID := r.PathValue("id")
	exchanges, err := h.sessions.Recent(r.Context(), sessionID, 0)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "history read failed",
			slog.String("session", sessionID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "could not read session history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"exchanges":  exchanges,
	})
}
