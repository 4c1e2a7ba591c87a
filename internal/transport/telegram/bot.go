// Package telegram is the conversational transport over the Telegram Bot
// API: one inbound text message produces exactly one outbound reply. Session
// lifecycle and delivery guarantees belong to Telegram; this package only
// moves text in and out.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/polyanalyst/internal/domain"
)

// TextHandler is the text-in/text-out function the bot feeds messages into.
type TextHandler func(ctx context.Context, sessionID, text string) string

// Bot long-polls the Telegram Bot API and replies to every text message.
type Bot struct {
	token       string
	pollTimeout time.Duration
	client      *http.Client
	handle      TextHandler
	sessions    domain.SessionStore // optional
	logger      *slog.Logger
}

// New creates a Bot. sessions may be nil to skip history recording.
func New(token string, pollTimeoutSeconds int, handle TextHandler,
	sessions domain.SessionStore, logger *slog.Logger) *Bot {

	pollTimeout := time.Duration(pollTimeoutSeconds) * time.Second
	if pollTimeout <= 0 {
		pollTimeout = 30 * time.Second
	}

	return &Bot{
		token:       token,
		pollTimeout: pollTimeout,
		// The HTTP timeout must outlast the long-poll hold time.
		client:   &http.Client{Timeout: pollTimeout + 10*time.Second},
		handle:   handle,
		sessions: sessions,
		logger:   logger.With(slog.String("component", "telegram")),
	}
}

// update mirrors the subset of the Telegram Update object the bot reads.
type update struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// Run long-polls getUpdates until the context is cancelled. Poll failures
// are logged and retried after a short pause; a dead Telegram connection
// must not take the process down.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.InfoContext(ctx, "telegram transport starting")

	var offset int64
	for {
		updates, err := b.getUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.logger.WarnContext(ctx, "poll failed",
				slog.String("error", err.Error()),
			)
			select {
			case <-time.After(5 * time.Second):
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		for _, u := range updates {
			offset = u.UpdateID + 1
			if u.Message == nil || u.Message.Text == "" {
				continue
			}
			b.handleMessage(ctx, u.Message.Chat.ID, u.Message.Text)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, chatID int64, text string) {
	sessionID := strconv.FormatInt(chatID, 10)

	response := b.handle(ctx, sessionID, text)

	if err := b.sendMessage(ctx, chatID, response); err != nil {
		b.logger.ErrorContext(ctx, "send reply failed",
			slog.String("session", sessionID),
			slog.String("error", err.Error()),
		)
		return
	}

	if b.sessions != nil {
		ex := domain.Exchange{
			ID:       uuid.NewString(),
			Query:    text,
			Response: response,
			At:       time.Now().UTC(),
		}
		if err := b.sessions.Append(ctx, sessionID, ex); err != nil {
			b.logger.WarnContext(ctx, "session append failed",
				slog.String("session", sessionID),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (b *Bot) getUpdates(ctx context.Context, offset int64) ([]update, error) {
	url := fmt.Sprintf("https://api.telegram.org/bot%s/getUpdates?timeout=%d&offset=%d",
		b.token, int(b.pollTimeout.Seconds()), offset)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("telegram: create request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram: get updates: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("telegram: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("telegram: unexpected status %d: %s",
			resp.StatusCode, string(body[:min(len(body), 256)]))
	}

	var payload struct {
		OK     bool     `json:"ok"`
		Result []update `json:"result"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("telegram: decode updates: %w", err)
	}
	if !payload.OK {
		return nil, errors.New("telegram: api reported not ok")
	}
	return payload.Result, nil
}

func (b *Bot) sendMessage(ctx context.Context, chatID int64, text string) error {
	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", b.token)

	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("telegram: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
