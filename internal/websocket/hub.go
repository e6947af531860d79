package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/isyarat/internal/playback"
	"github.com/satriahrh/isyarat/internal/sign"
	"github.com/satriahrh/isyarat/usecase"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 16 * 1024

	// Time allowed for a control message, translation included
	commandTimeout = 30 * time.Second

	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// SessionController is the session API driven by client messages
type SessionController interface {
	Convert(ctx context.Context, id, text, sourceLang string) (usecase.Conversion, error)
	Start(ctx context.Context, id string) (bool, error)
	Stop(ctx context.Context, id string) error
	SetInterval(ctx context.Context, id string, intervalMs int) (int, error)
	PlayGesture(ctx context.Context, id, text string) (sign.Match, error)
}

// Hub keeps the clients subscribed to each session and fans playback
// events out to them
type Hub struct {
	// Subscribed clients per session ID.
	sessions map[string]map[*Client]struct{}

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	// Mutex for thread-safe access to sessions map
	mu sync.RWMutex

	controller SessionController
	validator  *MessageValidator
	logger     *zap.Logger
}

var _ usecase.Publisher = (*Hub)(nil)

// NewHub creates a new WebSocket hub
func NewHub(controller SessionController, logger *zap.Logger) *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		controller: controller,
		validator:  NewMessageValidator(),
		logger:     logger,
	}
}

// Run starts the hub's main loop and returns when ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			clients, ok := h.sessions[client.sessionID]
			if !ok {
				clients = make(map[*Client]struct{})
				h.sessions[client.sessionID] = clients
			}
			clients[client] = struct{}{}
			h.mu.Unlock()
			h.logger.Info("Client registered", zap.String("sessionID", client.sessionID))

		case client := <-h.unregister:
			h.remove(client)
			h.logger.Info("Client unregistered", zap.String("sessionID", client.sessionID))
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.sessions[client.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; ok {
		delete(clients, client)
		close(client.send)
	}
	if len(clients) == 0 {
		delete(h.sessions, client.sessionID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, clients := range h.sessions {
		for client := range clients {
			close(client.send)
		}
		delete(h.sessions, id)
	}
}

// ClientCount returns the number of clients subscribed to a session
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// broadcast queues payload for every client of the session without
// blocking. Clients with a full buffer miss the message.
func (h *Hub) broadcast(sessionID string, message interface{}) {
	payload, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Failed to marshal message", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.sessions[sessionID] {
		select {
		case client.send <- WriteData{Type: websocket.TextMessage, Payload: payload}:
		default:
			h.logger.Warn("Client send buffer full, dropping message",
				zap.String("sessionID", sessionID))
		}
	}
}

// PublishConversion implements usecase.Publisher
func (h *Hub) PublishConversion(sessionID string, conversion usecase.Conversion) {
	h.broadcast(sessionID, CreateConvertedMessage(sessionID, conversion))
}

// PublishFrame implements usecase.Publisher
func (h *Hub) PublishFrame(sessionID string, tick playback.Tick) {
	h.broadcast(sessionID, CreateFrameMessage(sessionID, tick))
}

// PublishPlayback implements usecase.Publisher
func (h *Hub) PublishPlayback(sessionID string, running bool) {
	h.broadcast(sessionID, CreatePlaybackMessage(sessionID, running))
}

// PublishGesture implements usecase.Publisher
func (h *Hub) PublishGesture(sessionID string, event playback.GestureEvent) {
	h.broadcast(sessionID, CreateGestureEventMessage(sessionID, event))
}

// PublishClosed implements usecase.Publisher. Subscribers get a final
// error message and are disconnected.
func (h *Hub) PublishClosed(sessionID string, reason error) {
	msg := CreateErrorMessage(ErrorCodeSessionClosed, "Session closed", "")
	if reason != nil {
		msg = CreateErrorMessageFor(reason)
	}
	h.broadcast(sessionID, msg)

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.sessions[sessionID]))
	for client := range h.sessions[sessionID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	// Unregistering goes through Run, which may be waiting on this caller
	go func() {
		for _, client := range clients {
			h.leave(client)
		}
	}()
}

// join registers client unless the hub has stopped
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// leave unregisters client unless the hub has stopped
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

type WriteData struct {
	// MessageType is the type of the websocket message.
	// Expect websocket.TextMessage or websocket.BinaryMessage
	Type    int
	Payload []byte
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan WriteData

	// Session this client is subscribed to
	sessionID string

	logger *zap.Logger
}

// HandleWebSocketWithAuth upgrades the request and subscribes the
// connection to an already authorized session
func HandleWebSocketWithAuth(hub *Hub, c echo.Context, sessionID string, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	client := &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan WriteData, sendBufferSize),
		sessionID: sessionID,
		logger:    logger.With(zap.String("sessionID", sessionID)),
	}

	if !hub.join(client) {
		conn.Close()
		return nil
	}

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	return nil
}

// readPump pumps messages from the websocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		switch messageType {
		case websocket.TextMessage:
			c.processMessage(message)
		default:
			c.logger.Warn("Received unsupported message type", zap.Int("type", messageType))
			c.reply(CreateErrorMessage(ErrorCodeInvalidMessage, "Only text messages are supported", ""))
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(message.Type, message.Payload); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// reply queues a message for this client only
func (c *Client) reply(message interface{}) {
	payload, err := json.Marshal(message)
	if err != nil {
		c.logger.Error("Failed to marshal reply", zap.Error(err))
		return
	}

	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()

	// The channel is closed once the client leaves the hub
	if _, ok := c.hub.sessions[c.sessionID][c]; !ok {
		return
	}
	select {
	case c.send <- WriteData{Type: websocket.TextMessage, Payload: payload}:
	default:
		c.logger.Warn("Client send buffer full, dropping reply")
	}
}

// processMessage dispatches a client message to the session controller
func (c *Client) processMessage(message []byte) {
	parsed, err := c.hub.validator.ValidateMessage(message)
	if err != nil {
		c.logger.Warn("Invalid message", zap.Error(err))
		reply := CreateErrorMessageFor(err)
		if reply.Code == ErrorCodeInternal {
			reply = CreateErrorMessage(ErrorCodeInvalidMessage, "Invalid message", err.Error())
		}
		c.reply(reply)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	controller := c.hub.controller
	switch msg := parsed.(type) {
	case *ConvertMessage:
		// Subscribers receive the result through PublishConversion
		_, err = controller.Convert(ctx, c.sessionID, msg.Text, msg.Source)

	case *ControlMessage:
		if msg.Type == MessageTypeStart {
			var started bool
			started, err = controller.Start(ctx, c.sessionID)
			if err == nil && !started {
				c.reply(CreateErrorMessage(ErrorCodeNothingToPlay, "Convert some text first", ""))
			}
		} else {
			err = controller.Stop(ctx, c.sessionID)
		}

	case *IntervalMessage:
		var applied int
		applied, err = controller.SetInterval(ctx, c.sessionID, msg.IntervalMs)
		if err == nil {
			c.reply(CreateIntervalMessage(applied))
		}

	case *GestureMessage:
		_, err = controller.PlayGesture(ctx, c.sessionID, msg.Text)

	case *PingMessage:
		c.reply(CreatePongMessage(msg.Data))
	}

	if err != nil {
		c.logger.Warn("Failed to process message", zap.Error(err))
		c.reply(CreateErrorMessageFor(err))
	}
}
