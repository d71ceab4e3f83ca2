package chatsync

import (
	"context"

	"chat_sync_service/internal/chat/domain"
)

// EventHandler consumes one push event. Handlers may fire at any time,
// including bursts.
type EventHandler func(event domain.Event)

// Transport is the bidirectional push channel between the client and the
// server. It delivers no durability guarantee: after a reconnect the
// client must treat the gap as a potential state miss and re-fetch from
// the REST stores.
type Transport interface {
	// Connect opens the session, the user's own room is joined implicitly
	Connect(ctx context.Context, userID string) error
	// JoinRoom subscribes to one conversation's room. Membership is
	// tracked so a reconnect restores exactly the same set.
	JoinRoom(conversationID string) error
	LeaveRoom(conversationID string) error
	// On registers a handler for a named push event
	On(eventName string, handler EventHandler)
	// OnReconnect registers fn, called after a dropped connection has
	// been re-established and room membership restored
	OnReconnect(fn func())
	Emit(req domain.WSRequest) error
	Disconnect() error
}
