package realtime

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

// UnreadCounter supplies the recipient's current unread count, pushed once on
// bind so reconnecting clients reconcile missed updates.
type UnreadCounter interface {
	GetUnreadCount(recipientID uint) (int64, error)
}

// ChatMessage is the frame relayed between chat channel bindings.
type ChatMessage struct {
	From         uint      `json:"from"`
	FromUsername string    `json:"fromUsername"`
	To           uint      `json:"to"`
	Text         string    `json:"text"`
	SentAt       time.Time `json:"sentAt"`
}

// ChannelHandler serves the real-time upgrade endpoints. Every connection
// passes the Authenticator before it is admitted; the topic a binding is
// subscribed to is always derived from the verified identity, never from
// client input.
type ChannelHandler struct {
	hub      *Hub
	auth     *Authenticator
	counts   UnreadCounter
	upgrader websocket.Upgrader
}

// NewChannelHandler creates a ChannelHandler.
func NewChannelHandler(hub *Hub, auth *Authenticator, counts UnreadCounter) *ChannelHandler {
	return &ChannelHandler{
		hub:    hub,
		auth:   auth,
		counts: counts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// RegisterChannelRoutes registers the websocket endpoints
func (h *ChannelHandler) RegisterChannelRoutes(e *echo.Echo) {
	e.GET("/ws/notifications", h.Notifications)
	e.GET("/ws/chat", h.Chat)
}

// Notifications binds an authenticated connection to the caller's
// notification topic and pumps envelopes until disconnect.
func (h *ChannelHandler) Notifications(c echo.Context) error {
	identity, err := h.auth.Authenticate(c.Request())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil // upgrader already wrote the handshake response
	}

	sub, unsubscribe := h.hub.Subscribe(NotificationTopic(identity.UserID))
	defer unsubscribe()

	log.Info().Uint("user_id", identity.UserID).Msg("notification channel bound")

	// Reconcile on bind: the client may have missed pushes while away.
	if count, err := h.counts.GetUnreadCount(identity.UserID); err == nil {
		h.writeMessage(conn, UnreadCountEnvelope(count))
	}

	h.pump(conn, sub)
	log.Info().Uint("user_id", identity.UserID).Msg("notification channel closed")
	return nil
}

// Chat binds an authenticated connection to the caller's chat topic and
// relays incoming frames to the addressed recipient's topic.
func (h *ChannelHandler) Chat(c echo.Context) error {
	identity, err := h.auth.Authenticate(c.Request())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil
	}

	sub, unsubscribe := h.hub.Subscribe(ChatTopic(identity.UserID))
	defer unsubscribe()
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			var frame struct {
				To   uint   `json:"to"`
				Text string `json:"text"`
			}
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
			if frame.To == 0 || frame.To == identity.UserID || frame.Text == "" {
				continue
			}
			h.hub.Publish(ChatTopic(frame.To), ChatMessage{
				From:         identity.UserID,
				FromUsername: identity.Username,
				To:           frame.To,
				Text:         frame.Text,
				SentAt:       time.Now().UTC(),
			})
		}
	}()

	h.writeLoop(conn, sub, done)
	return nil
}

// pump runs a write loop for server-push-only channels, with a read loop that
// exists solely to observe the close handshake.
func (h *ChannelHandler) pump(conn *websocket.Conn, sub <-chan interface{}) {
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.writeLoop(conn, sub, done)
}

func (h *ChannelHandler) writeLoop(conn *websocket.Conn, sub <-chan interface{}, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case message, ok := <-sub:
			if !ok {
				return
			}
			if err := h.writeMessage(conn, message); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *ChannelHandler) writeMessage(conn *websocket.Conn, message interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(message); err != nil {
		log.Debug().Err(err).Msg("push delivery failed")
		return err
	}
	return nil
}
