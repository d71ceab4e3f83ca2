package app

import (
	"context"
	"errors"
	"time"

	"chat_sync_service/internal/chat/domain"
	"chat_sync_service/internal/chat/repository"

	"github.com/google/uuid"
)

// ConversationUseCase handles the conversation directory operations
type ConversationUseCase struct {
	convRepo repository.ConversationRepository
	msgRepo  repository.MessageRepository
}

// NewConversationUseCase init conversation use case
func NewConversationUseCase(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
) *ConversationUseCase {
	return &ConversationUseCase{
		convRepo: convRepo,
		msgRepo:  msgRepo,
	}
}

// List returns the user's conversations with the derived unread flag.
// The flag is 1 when the last message is from someone else and the user
// has not read it. The exact live counter is maintained client-side
// during a session.
func (uc *ConversationUseCase) List(ctx context.Context, userID string) ([]domain.Conversation, error) {
	convs, err := uc.convRepo.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range convs {
		last := convs[i].LastMessage
		if last != nil && last.SenderID != userID && !last.IsReadBy(userID) {
			convs[i].Unread = 1
		}
	}
	return convs, nil
}

// StartDirect finds or creates the 1 on 1 conversation between two users
func (uc *ConversationUseCase) StartDirect(ctx context.Context, userID, otherUserID string) (*domain.Conversation, error) {
	if otherUserID == "" || otherUserID == userID {
		return nil, errors.New("direct conversation needs a distinct counterpart")
	}

	existing, _ := uc.convRepo.FindDirect(ctx, userID, otherUserID)
	if existing != nil {
		return existing, nil
	}

	conv := &domain.Conversation{
		ID:           uuid.New().String(),
		Type:         domain.ConversationDirect,
		Participants: []string{userID, otherUserID},
		CreatedAt:    time.Now().Unix(),
	}
	if err := uc.convRepo.Create(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// TogglePin flips the pinned flag for this user, server state is
// authoritative so the caller reloads afterwards
func (uc *ConversationUseCase) TogglePin(ctx context.Context, conversationID, userID string) error {
	return uc.convRepo.TogglePin(ctx, conversationID, userID)
}

// ToggleArchive flips the archived flag for this user
func (uc *ConversationUseCase) ToggleArchive(ctx context.Context, conversationID, userID string) error {
	return uc.convRepo.ToggleArchive(ctx, conversationID, userID)
}
