package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"zen-backend/internal/middleware"
	"zen-backend/internal/models"
	"zen-backend/internal/services"
)

const writeWait = 10 * time.Second

type chatRelay interface {
	Chat(ctx context.Context, req models.InboundChatRequest) (string, error)
}

// admitter meters frames against the per-address request budget.
type admitter interface {
	Admit(ctx context.Context, key string) (bool, string)
}

type session struct {
	conn   *websocket.Conn
	cancel context.CancelFunc
}

// Hub serves chat conversations over websockets. Each connection owns its
// history; nothing survives the connection.
type Hub struct {
	mu        sync.Mutex
	sessions  map[uuid.UUID]*session
	relay     chatRelay
	limiter   admitter
	upgrader  websocket.Upgrader
	readLimit int64
	logger    *zap.Logger
}

// NewHub builds a hub. A nil limiter leaves frames unmetered; the upgrade
// request itself is still counted by the HTTP middleware.
func NewHub(relay chatRelay, limiter admitter, allowedOrigins []string, readLimit int64, logger *zap.Logger) *Hub {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = true
	}

	return &Hub{
		sessions:  make(map[uuid.UUID]*session),
		relay:     relay,
		limiter:   limiter,
		readLimit: readLimit,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
		},
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	if h.readLimit > 0 {
		conn.SetReadLimit(h.readLimit)
	}

	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.New()
	ip := middleware.ClientIP(r)
	h.register(id, &session{conn: conn, cancel: cancel})

	go func() {
		defer h.unregister(id)
		h.serve(ctx, id, ip, conn)
	}()
}

// serve runs one conversation. Frames are handled one at a time, so a
// connection never has more than one message in flight. Every frame counts
// against the caller's budget like an HTTP request to /api.
func (h *Hub) serve(ctx context.Context, id uuid.UUID, ip string, conn *websocket.Conn) {
	if err := writeFrame(conn, models.WSOutgoing{Type: "connected", SessionID: id.String()}); err != nil {
		return
	}

	var history []models.HistoryEntry
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		if h.limiter != nil {
			if ok, msg := h.limiter.Admit(ctx, ip); !ok {
				frame := models.WSOutgoing{Type: "error", Error: msg, Code: models.CodeRateLimitExceeded}
				if err := writeFrame(conn, frame); err != nil {
					return
				}
				continue
			}
		}

		var frame models.WSIncoming
		if err := json.Unmarshal(data, &frame); err != nil {
			frame = models.WSIncoming{}
		}

		req := models.InboundChatRequest{Message: frame.Message}
		if len(history) > 0 {
			req.History, _ = json.Marshal(history)
		}

		reply, err := h.relay.Chat(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if werr := writeFrame(conn, errorFrame(err)); werr != nil {
				return
			}
			continue
		}

		// The relay already accepted the message, so it decodes and
		// sanitizes cleanly here.
		message, _ := services.ValidateMessage(frame.Message)
		history = append(history,
			models.HistoryEntry{Role: "user", Parts: []models.Part{{Text: message}}},
			models.HistoryEntry{Role: "model", Parts: []models.Part{{Text: reply}}},
		)

		if err := writeFrame(conn, models.WSOutgoing{Type: "response", Response: reply}); err != nil {
			return
		}
	}
}

func errorFrame(err error) models.WSOutgoing {
	var relayErr *services.RelayError
	if !errors.As(err, &relayErr) {
		relayErr = services.NewRelayError(models.CodeInternal, err)
	}
	return models.WSOutgoing{Type: "error", Error: relayErr.Message, Code: relayErr.Code}
}

func writeFrame(conn *websocket.Conn, frame models.WSOutgoing) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(frame)
}

func (h *Hub) register(id uuid.UUID, s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[id] = s
	h.logger.Info("websocket chat connected", zap.String("session_id", id.String()), zap.Int("active", len(h.sessions)))
}

func (h *Hub) unregister(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[id]
	if !ok {
		return
	}
	s.cancel()
	s.conn.Close()
	delete(h.sessions, id)

	h.logger.Info("websocket chat disconnected", zap.String("session_id", id.String()))
}

// ActiveSessions reports the number of open conversations.
func (h *Hub) ActiveSessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// CloseAll ends every open conversation, as on server shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, s := range h.sessions {
		s.cancel()
		s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		s.conn.Close()
		delete(h.sessions, id)
	}
}
