// Package ws exposes the analyst over a WebSocket chat gateway. Each
// connection is one session: every inbound text frame gets exactly one
// outbound reply frame, in order.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/alanyoungcy/polyanalyst/internal/domain"
)

const (
	// writeWait is the maximum time to wait for a write to complete.
	writeWait = 10 * time.Second

	// pongWait is the maximum time to wait for a pong from the client.
	pongWait = 60 * time.Second

	// pingPeriod sends pings at this interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is the maximum size of an incoming message.
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The gateway sits behind the CORS middleware; origin policy
		// lives there.
		return true
	},
}

// TextHandler is the text-in/text-out function the gateway feeds frames into.
type TextHandler func(ctx context.Context, sessionID, text string) string

// Gateway upgrades HTTP connections and runs the per-connection chat loops.
type Gateway struct {
	handle   TextHandler
	sessions domain.SessionStore // optional
	logger   *slog.Logger
}

// NewGateway creates a Gateway. sessions may be nil.
func NewGateway(handle TextHandler, sessions domain.SessionStore, logger *slog.Logger) *Gateway {
	return &Gateway{
		handle:   handle,
		sessions: sessions,
		logger:   logger.With(slog.String("component", "ws_gateway")),
	}
}

type inboundFrame struct {
	Text string `json:"text"`
}

type outboundFrame struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
}

// ServeWS handles GET /ws: upgrade, then read frames until the client goes
// away. Replies for one connection are serialized so frames never interleave.
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.WarnContext(r.Context(), "upgrade failed",
			slog.String("error", err.Error()),
		)
		return
	}

	sessionID := uuid.NewString()
	g.logger.InfoContext(r.Context(), "client connected",
		slog.String("session", sessionID),
		slog.String("remote_addr", r.RemoteAddr),
	)

	c := &client{
		conn:      conn,
		sessionID: sessionID,
		gateway:   g,
	}
	c.run(r.Context())
}

// client is one WebSocket connection.
type client struct {
	conn      *websocket.Conn
	sessionID string
	gateway   *Gateway
	writeMu   sync.Mutex
}

func (c *client) run(ctx context.Context) {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	stopPing := make(chan struct{})
	defer close(stopPing)
	go c.pingLoop(stopPing)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.gateway.logger.WarnContext(ctx, "read failed",
					slog.String("session", c.sessionID),
					slog.String("error", err.Error()),
				)
			}
			return
		}

		// Accept both a JSON frame and a bare text frame.
		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil || frame.Text == "" {
			frame.Text = string(data)
		}
		if frame.Text == "" {
			continue
		}

		response := c.gateway.handle(ctx, c.sessionID, frame.Text)

		if err := c.write(outboundFrame{SessionID: c.sessionID, Response: response}); err != nil {
			c.gateway.logger.WarnContext(ctx, "write failed",
				slog.String("session", c.sessionID),
				slog.String("error", err.Error()),
			)
			return
		}

		c.recordExchange(ctx, frame.Text, response)
	}
}

func (c *client) write(frame outboundFrame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(frame)
}

func (c *client) pingLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.writeMu.Lock()
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		case <-stop:
			return
		}
	}
}

func (c *client) recordExchange(ctx context.Context, query, response string) {
	if c.gateway.sessions == nil {
		return
	}
	ex := domain.Exchange{
		ID:       uuid.NewString(),
		Query:    query,
		Response: response,
		At:       time.Now().UTC(),
	}
	if err := c.gateway.sessions.Append(ctx, c.sessionID, ex); err != nil {
		c.gateway.logger.WarnContext(ctx, "session append failed",
			slog.String("session", c.sessionID),
			slog.String("error", err.Error()),
		)
	}
}
