package app

import (
	"context"

	"github.com/stretchr/testify/mock"

	"chat_sync_service/internal/chat/domain"
)

// MockConversationRepo Mock ConversationRepository
type MockConversationRepo struct {
	mock.Mock
}

func (m *MockConversationRepo) List(ctx context.Context, userID string) ([]domain.Conversation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockConversationRepo) FindByID(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockConversationRepo) FindDirect(ctx context.Context, userA, userB string) (*domain.Conversation, error) {
	args := m.Called(ctx, userA, userB)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockConversationRepo) Create(ctx context.Context, conv *domain.Conversation) error {
	args := m.Called(ctx, conv)
	return args.Error(0)
}
func (m *MockConversationRepo) SetLastMessage(ctx context.Context, conversationID string, msg *domain.Message) error {
	args := m.Called(ctx, conversationID, msg)
	return args.Error(0)
}
func (m *MockConversationRepo) TogglePin(ctx context.Context, conversationID, userID string) error {
	args := m.Called(ctx, conversationID, userID)
	return args.Error(0)
}
func (m *MockConversationRepo) ToggleArchive(ctx context.Context, conversationID, userID string) error {
	args := m.Called(ctx, conversationID, userID)
	return args.Error(0)
}

// MockMessageRepo Mock MessageRepository
type MockMessageRepo struct {
	mock.Mock
}

func (m *MockMessageRepo) ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockMessageRepo) FindByID(ctx context.Context, messageID string) (*domain.Message, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockMessageRepo) Insert(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
func (m *MockMessageRepo) UpdateContent(ctx context.Context, messageID, content string) error {
	args := m.Called(ctx, messageID, content)
	return args.Error(0)
}
func (m *MockMessageRepo) MarkDeleted(ctx context.Context, messageID string) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}
func (m *MockMessageRepo) MarkDeletedFor(ctx context.Context, messageID, userID string) error {
	args := m.Called(ctx, messageID, userID)
	return args.Error(0)
}
func (m *MockMessageRepo) SetStarred(ctx context.Context, messageID, userID string, starred bool) error {
	args := m.Called(ctx, messageID, userID, starred)
	return args.Error(0)
}
func (m *MockMessageRepo) MarkRead(ctx context.Context, conversationID, userID string) error {
	args := m.Called(ctx, conversationID, userID)
	return args.Error(0)
}
func (m *MockMessageRepo) CountUnread(ctx context.Context, conversationID, userID string) (int, error) {
	args := m.Called(ctx, conversationID, userID)
	return args.Int(0), args.Error(1)
}

// MockPubSub Mock PubSub, records every published event
type MockPubSub struct {
	mock.Mock
}

func (m *MockPubSub) Publish(channel string, event domain.Event) error {
	args := m.Called(channel, event)
	return args.Error(0)
}
func (m *MockPubSub) Subscribe(ctx context.Context, channel string, handler func(event domain.Event)) error {
	args := m.Called(ctx, channel, handler)
	return args.Error(0)
}

// MockEventLog Mock EventLog
type MockEventLog struct {
	mock.Mock
}

func (m *MockEventLog) Append(ctx context.Context, conversationID string, event domain.Event) error {
	args := m.Called(ctx, conversationID, event)
	return args.Error(0)
}
