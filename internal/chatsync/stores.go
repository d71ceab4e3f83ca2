package chatsync

import (
	"context"

	"chat_sync_service/internal/chat/domain"
)

// ConversationStore is the REST collaborator holding the authoritative
// conversation list. It is the source of truth the client falls back to
// on reconnect.
type ConversationStore interface {
	List(ctx context.Context) ([]domain.Conversation, error)
	StartDirect(ctx context.Context, otherUserID string) (*domain.Conversation, error)
	TogglePin(ctx context.Context, conversationID string) error
	ToggleArchive(ctx context.Context, conversationID string) error
}

// MessageStore is the REST collaborator holding the authoritative
// message log. Live message actions travel over the Transport, the
// store serves history fetches and the reconnect reconciliation.
type MessageStore interface {
	List(ctx context.Context, conversationID string) ([]domain.Message, error)
	MarkRead(ctx context.Context, conversationID string) error
}
