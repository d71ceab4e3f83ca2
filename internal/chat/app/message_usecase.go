package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"chat_sync_service/internal/chat/domain"
	"chat_sync_service/internal/chat/repository"
	"chat_sync_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrEmptyMessage a send needs trimmed content or an attachment
	ErrEmptyMessage = errors.New("message needs content or an attachment")
	// ErrNotSender the operation is only permitted to the original sender
	ErrNotSender = errors.New("only the sender may do this")
	// ErrNotParticipant the user is not in the conversation
	ErrNotParticipant = errors.New("not a participant of this conversation")
	// ErrMessageDeleted the message was deleted for everyone
	ErrMessageDeleted = errors.New("message is deleted")
)

// MessageUseCase handles the per-conversation message log and its fan-out
type MessageUseCase struct {
	convRepo repository.ConversationRepository
	msgRepo  repository.MessageRepository
	pubsub   repository.PubSub
	eventLog repository.EventLog

	// one mutex per conversation keeps the append path in a single
	// total order; different conversations proceed in parallel
	appendMu sync.Map
}

// NewMessageUseCase init message use case. eventLog may be nil.
func NewMessageUseCase(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	pubsub repository.PubSub,
	eventLog repository.EventLog,
) *MessageUseCase {
	return &MessageUseCase{
		convRepo: convRepo,
		msgRepo:  msgRepo,
		pubsub:   pubsub,
		eventLog: eventLog,
	}
}

// List returns the full ordered history of a conversation
func (uc *MessageUseCase) List(ctx context.Context, conversationID, userID string) ([]domain.Message, error) {
	if _, err := uc.requireParticipant(ctx, conversationID, userID); err != nil {
		return nil, err
	}
	return uc.msgRepo.ListByConversation(ctx, conversationID)
}

// Send validates, appends and fans out a new message. The canonical
// message is returned to the sender, there is no optimistic copy.
func (uc *MessageUseCase) Send(ctx context.Context, conversationID, senderID, content string, attachments []domain.Attachment) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" && len(attachments) == 0 {
		return nil, ErrEmptyMessage
	}

	conv, err := uc.requireParticipant(ctx, conversationID, senderID)
	if err != nil {
		return nil, err
	}

	mu := uc.lockFor(conversationID)
	mu.Lock()
	defer mu.Unlock()

	msg := &domain.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		Attachments:    attachments,
		ReadBy:         []string{senderID},
		CreatedAt:      time.Now().UnixNano(),
	}

	if err := uc.msgRepo.Insert(ctx, msg); err != nil {
		return nil, err
	}
	if err := uc.convRepo.SetLastMessage(ctx, conversationID, msg); err != nil {
		return nil, err
	}

	event := domain.Event{Name: domain.EventNewMessage, Message: msg}
	uc.broadcast(conv, senderID, event)
	uc.appendLog(ctx, conversationID, event)

	return msg, nil
}

// Edit replaces the content of the user's own message
func (uc *MessageUseCase) Edit(ctx context.Context, messageID, userID, content string) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}

	msg, err := uc.msgRepo.FindByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != userID {
		return nil, ErrNotSender
	}
	if msg.IsDeleted {
		return nil, ErrMessageDeleted
	}

	if err := uc.msgRepo.UpdateContent(ctx, messageID, content); err != nil {
		return nil, err
	}
	msg.Content = content
	msg.IsEdited = true

	conv, err := uc.convRepo.FindByID(ctx, msg.ConversationID)
	if err != nil {
		return nil, err
	}
	if conv.LastMessage != nil && conv.LastMessage.ID == msg.ID {
		if err := uc.convRepo.SetLastMessage(ctx, conv.ID, msg); err != nil {
			return nil, err
		}
	}

	event := domain.Event{Name: domain.EventMessageUpdated, Message: msg}
	uc.broadcast(conv, "", event)
	uc.appendLog(ctx, msg.ConversationID, event)

	return msg, nil
}

// Delete removes a message in one of two modes: 'everyone' tombstones it
// for all participants (sender only, one-way), 'me' hides it for the
// requesting user alone.
func (uc *MessageUseCase) Delete(ctx context.Context, messageID, userID string, mode domain.DeleteMode) error {
	msg, err := uc.msgRepo.FindByID(ctx, messageID)
	if err != nil {
		return err
	}

	conv, err := uc.requireParticipant(ctx, msg.ConversationID, userID)
	if err != nil {
		return err
	}

	switch mode {
	case domain.DeleteForEveryone:
		if msg.SenderID != userID {
			return ErrNotSender
		}
		if err := uc.msgRepo.MarkDeleted(ctx, messageID); err != nil {
			return err
		}
		msg.IsDeleted = true
		msg.Content = ""
		msg.Attachments = nil

		if conv.LastMessage != nil && conv.LastMessage.ID == msg.ID {
			if err := uc.convRepo.SetLastMessage(ctx, conv.ID, msg); err != nil {
				return err
			}
		}

		event := domain.Event{Name: domain.EventMessageUpdated, Message: msg}
		uc.broadcast(conv, "", event)
		uc.appendLog(ctx, msg.ConversationID, event)
		return nil

	case domain.DeleteForMe:
		if err := uc.msgRepo.MarkDeletedFor(ctx, messageID, userID); err != nil {
			return err
		}
		msg.DeletedFor = append(msg.DeletedFor, userID)

		// only the deleting user's view changes, notify their own
		// devices and nobody else
		event := domain.Event{Name: domain.EventMessageUpdated, Message: msg}
		if err := uc.pubsub.Publish(domain.UserRoom(userID), event); err != nil {
			logger.Log.Error("publish error", zap.Error(err))
		}
		return nil

	default:
		return errors.New("unknown delete mode")
	}
}

// ToggleStar flips the user's membership in the message's starred set
// and returns the new state
func (uc *MessageUseCase) ToggleStar(ctx context.Context, messageID, userID string) (bool, error) {
	msg, err := uc.msgRepo.FindByID(ctx, messageID)
	if err != nil {
		return false, err
	}

	starred := !msg.IsStarredBy(userID)
	if err := uc.msgRepo.SetStarred(ctx, messageID, userID, starred); err != nil {
		return false, err
	}

	// the event must carry the post-toggle set, subscribers replace
	// their local copy with it wholesale
	if starred {
		msg.StarredBy = append(msg.StarredBy, userID)
	} else {
		kept := msg.StarredBy[:0]
		for _, u := range msg.StarredBy {
			if u != userID {
				kept = append(kept, u)
			}
		}
		msg.StarredBy = kept
	}

	event := domain.Event{Name: domain.EventMessageUpdated, Message: msg}
	if err := uc.pubsub.Publish(domain.UserRoom(userID), event); err != nil {
		logger.Log.Error("publish error", zap.Error(err))
	}
	return starred, nil
}

// MarkRead adds the user to the read set of every message in the
// conversation they did not send and broadcasts the receipt. Marking an
// already-read conversation is a no-op apart from the broadcast.
func (uc *MessageUseCase) MarkRead(ctx context.Context, conversationID, userID string) error {
	conv, err := uc.requireParticipant(ctx, conversationID, userID)
	if err != nil {
		return err
	}

	if err := uc.msgRepo.MarkRead(ctx, conversationID, userID); err != nil {
		return err
	}

	event := domain.Event{
		Name: domain.EventMessagesRead,
		Receipt: &domain.ReadReceipt{
			ConversationID: conversationID,
			ReadBy:         userID,
		},
	}
	uc.broadcast(conv, userID, event)
	return nil
}

// CountUnread counts unread messages for the user in one conversation
func (uc *MessageUseCase) CountUnread(ctx context.Context, conversationID, userID string) (int, error) {
	if _, err := uc.requireParticipant(ctx, conversationID, userID); err != nil {
		return 0, err
	}
	return uc.msgRepo.CountUnread(ctx, conversationID, userID)
}

func (uc *MessageUseCase) requireParticipant(ctx context.Context, conversationID, userID string) (*domain.Conversation, error) {
	conv, err := uc.convRepo.FindByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, errors.New("conversation not found")
	}
	for _, p := range conv.Participants {
		if p == userID {
			return conv, nil
		}
	}
	return nil, ErrNotParticipant
}

func (uc *MessageUseCase) lockFor(conversationID string) *sync.Mutex {
	mu, _ := uc.appendMu.LoadOrStore(conversationID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// broadcast publishes to the conversation room and to every
// participant's user channel except skipUserID
func (uc *MessageUseCase) broadcast(conv *domain.Conversation, skipUserID string, event domain.Event) {
	if uc.pubsub == nil {
		return
	}
	if err := uc.pubsub.Publish(domain.ConversationRoom(conv.ID), event); err != nil {
		logger.Log.Error("publish error", zap.Error(err))
	}
	for _, p := range conv.Participants {
		if p == skipUserID {
			continue
		}
		if err := uc.pubsub.Publish(domain.UserRoom(p), event); err != nil {
			logger.Log.Error("publish error", zap.Error(err))
		}
	}
}

func (uc *MessageUseCase) appendLog(ctx context.Context, conversationID string, event domain.Event) {
	if uc.eventLog == nil {
		return
	}
	if err := uc.eventLog.Append(ctx, conversationID, event); err != nil {
		logger.Log.Error("event log append error", zap.Error(err))
	}
}
