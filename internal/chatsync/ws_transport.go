package chatsync

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"chat_sync_service/internal/chat/domain"
	"chat_sync_service/pkg/logger"
)

const (
	reconnectBaseDelay = time.Second
	reconnectMaxDelay  = 30 * time.Second
)

// wsFrame mirrors the server response envelope
type wsFrame struct {
	Action  string          `json:"action"`
	Success bool            `json:"success"`
	Payload json.RawMessage `json:"payload"`
	Error   string          `json:"error"`
}

type wsEventPayload struct {
	Event domain.Event `json:"event"`
}

// WSTransport is a websocket Transport over the chat service's /ws
// endpoint. It reconnects automatically with capped backoff, restores
// joined rooms, and then invokes the reconnect callbacks so the owner
// can re-fetch missed state.
type WSTransport struct {
	url   string
	token string

	mu           sync.Mutex
	conn         *websocket.Conn
	rooms        map[string]struct{}
	handlers     map[string]EventHandler
	reconnectFns []func()

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWSTransport create WSTransport. url is the ws:// endpoint, token
// the JWT passed in the auth query parameter.
func NewWSTransport(url, token string) *WSTransport {
	return &WSTransport{
		url:      url,
		token:    token,
		rooms:    map[string]struct{}{},
		handlers: map[string]EventHandler{},
	}
}

// On registers a handler for a named push event, call before Connect
func (t *WSTransport) On(eventName string, handler EventHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[eventName] = handler
}

// OnReconnect registers fn, call before Connect
func (t *WSTransport) OnReconnect(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reconnectFns = append(t.reconnectFns, fn)
}

// Connect dials the endpoint and starts the read loop
func (t *WSTransport) Connect(ctx context.Context, _ string) error {
	t.ctx, t.cancel = context.WithCancel(ctx)

	conn, err := t.dial()
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()

	t.wg.Add(1)
	go t.readLoop()
	return nil
}

func (t *WSTransport) dial() (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(t.ctx, fmt.Sprintf("%s?auth=%s", t.url, t.token), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", t.url, err)
	}
	return conn, nil
}

// JoinRoom subscribes to the conversation's room and remembers the
// membership for reconnect
func (t *WSTransport) JoinRoom(conversationID string) error {
	t.mu.Lock()
	t.rooms[conversationID] = struct{}{}
	t.mu.Unlock()
	return t.Emit(domain.WSRequest{Action: string(domain.JoinConversation), ConversationID: conversationID})
}

// LeaveRoom drops the room and its tracked membership
func (t *WSTransport) LeaveRoom(conversationID string) error {
	t.mu.Lock()
	delete(t.rooms, conversationID)
	t.mu.Unlock()
	return t.Emit(domain.WSRequest{Action: string(domain.LeaveConversation), ConversationID: conversationID})
}

// Emit writes one request frame. Writes are serialized, gorilla
// connections allow a single concurrent writer.
func (t *WSTransport) Emit(req domain.WSRequest) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return fmt.Errorf("transport not connected")
	}
	return t.conn.WriteJSON(req)
}

// Disconnect closes the connection and stops reconnecting
func (t *WSTransport) Disconnect() error {
	if t.cancel != nil {
		t.cancel()
	}
	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
	t.wg.Wait()
	return nil
}

func (t *WSTransport) readLoop() {
	defer t.wg.Done()
	for {
		t.mu.Lock()
		conn := t.conn
		t.mu.Unlock()
		if conn == nil {
			return
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			if t.ctx.Err() != nil {
				return
			}
			logger.Log.Errorf("websocket read error:", err)
			if !t.reconnect() {
				return
			}
			continue
		}
		t.dispatch(data)
	}
}

func (t *WSTransport) dispatch(data []byte) {
	var frame wsFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		logger.Log.Errorf("websocket frame decode error:", err)
		return
	}

	t.mu.Lock()
	handler, ok := t.handlers[frame.Action]
	t.mu.Unlock()
	if !ok {
		return
	}

	var payload wsEventPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		logger.Log.Errorf("websocket event decode error:", err)
		return
	}
	handler(payload.Event)
}

// reconnect retries the dial with capped backoff, restores room
// membership, then fires the reconnect callbacks. Returns false when
// the transport was shut down while waiting.
func (t *WSTransport) reconnect() bool {
	delay := reconnectBaseDelay
	for {
		select {
		case <-t.ctx.Done():
			return false
		case <-time.After(delay):
		}

		conn, err := t.dial()
		if err != nil {
			logger.Log.Errorf("websocket redial error:", err)
			if delay *= 2; delay > reconnectMaxDelay {
				delay = reconnectMaxDelay
			}
			continue
		}

		t.mu.Lock()
		t.conn = conn
		rooms := make([]string, 0, len(t.rooms))
		for id := range t.rooms {
			rooms = append(rooms, id)
		}
		fns := append([]func(){}, t.reconnectFns...)
		t.mu.Unlock()

		for _, id := range rooms {
			if err := t.Emit(domain.WSRequest{Action: string(domain.JoinConversation), ConversationID: id}); err != nil {
				logger.Log.Errorf("rejoin room error:", err)
			}
		}
		for _, fn := range fns {
			fn()
		}
		logger.Log.Info("websocket reconnected")
		return true
	}
}
