package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/deskshell/internal/markup"
	"github.com/jmylchreest/deskshell/internal/shell"
)

// Outgoing WebSocket message types.
const (
	MessageHello = "hello"
	MessageState = "state"
	MessageError = "error"
)

const (
	sendBuffer   = 16
	writeTimeout = 5 * time.Second
)

// wsMessage is the outgoing WebSocket message format. Incoming messages
// are markup.EventSpec values.
type wsMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id"`
	State     *shell.Snapshot `json:"state,omitempty"`
	Error     string          `json:"error,omitempty"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan wsMessage
}

// hub fans shell changes out to every connected client. Each client has a
// single writer goroutine; the hub never writes to a connection directly.
type hub struct {
	mu      sync.Mutex
	clients map[string]*client
	logger  *slog.Logger
}

func newHub(logger *slog.Logger) *hub {
	return &hub{
		clients: make(map[string]*client),
		logger:  logger,
	}
}

// run broadcasts a fresh snapshot for every change received on changes
// until ctx is done.
func (h *hub) run(ctx context.Context, s *shell.Shell, changes <-chan shell.ChangeEvent) {
	defer s.Unsubscribe(changes)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-changes:
			if !ok {
				return
			}
			h.logger.Debug("broadcasting state", "change", ev.Type, "id", ev.ID)
			snap := s.Snapshot()
			h.broadcast(wsMessage{Type: MessageState, State: &snap})
		}
	}
}

func (h *hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// sendTo queues msg for one client. Slow clients drop messages.
func (h *hub) sendTo(c *client, msg wsMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; !ok {
		return
	}
	msg.SessionID = c.id
	select {
	case c.send <- msg:
	default:
		h.logger.Warn("websocket client not keeping up, message dropped", "session", c.id)
	}
}

func (h *hub) broadcast(msg wsMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		m := msg
		m.SessionID = c.id
		select {
		case c.send <- m:
		default:
			h.logger.Warn("websocket client not keeping up, message dropped", "session", c.id)
		}
	}
}

// closeAll disconnects every client. Their read loops then exit.
func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.send)
		c.conn.Close()
	}
}

func (s *Server) upgrader() websocket.Upgrader {
	u := websocket.Upgrader{}
	if s.cfg.AllowAll {
		u.CheckOrigin = func(r *http.Request) bool { return true }
	}
	return u
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := s.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		id:   ulid.Make().String(),
		conn: conn,
		send: make(chan wsMessage, sendBuffer),
	}
	s.hub.add(c)
	s.logger.Debug("websocket connected", "session", c.id, "remote", r.RemoteAddr)

	go writePump(c)

	snap := s.shell.Snapshot()
	s.hub.sendTo(c, wsMessage{Type: MessageHello, State: &snap})

	defer func() {
		s.hub.remove(c)
		conn.Close()
		s.logger.Debug("websocket disconnected", "session", c.id)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed", "session", c.id, "error", err)
			}
			return
		}

		var spec markup.EventSpec
		if err := json.Unmarshal(data, &spec); err != nil {
			s.hub.sendTo(c, wsMessage{Type: MessageError, Error: "invalid message format"})
			continue
		}

		if _, err := s.apply(spec); err != nil {
			s.hub.sendTo(c, wsMessage{Type: MessageError, Error: err.Error()})
		}
	}
}

func writePump(c *client) {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteJSON(msg); err != nil {
			c.conn.Close()
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
}
