package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"chat_sync_service/internal/chat/domain"
	"chat_sync_service/pkg/logger"
)

func TestConversationUseCase_List(t *testing.T) {
	ctx := context.Background()
	logger.SetNewNop()

	convRepo := new(MockConversationRepo)
	msgRepo := new(MockMessageRepo)

	convRepo.On("List", ctx, "alice").Return([]domain.Conversation{
		{
			ID:           "unread",
			Participants: []string{"alice", "bob"},
			LastMessage:  &domain.Message{ID: "m1", SenderID: "bob", ReadBy: []string{"bob"}},
		},
		{
			ID:           "read",
			Participants: []string{"alice", "bob"},
			LastMessage:  &domain.Message{ID: "m2", SenderID: "bob", ReadBy: []string{"bob", "alice"}},
		},
		{
			ID:           "own-last",
			Participants: []string{"alice", "bob"},
			LastMessage:  &domain.Message{ID: "m3", SenderID: "alice", ReadBy: []string{"alice"}},
		},
		{
			ID:           "empty",
			Participants: []string{"alice", "bob"},
		},
	}, nil).Once()

	uc := NewConversationUseCase(convRepo, msgRepo)
	convs, err := uc.List(ctx, "alice")

	assert.NoError(t, err)
	assert.Len(t, convs, 4)

	// the load-time flag is boolean shaped: 1 or 0, never a count
	byID := map[string]int{}
	for _, c := range convs {
		byID[c.ID] = c.Unread
	}
	assert.Equal(t, 1, byID["unread"])
	assert.Equal(t, 0, byID["read"])
	assert.Equal(t, 0, byID["own-last"])
	assert.Equal(t, 0, byID["empty"])
}

func TestConversationUseCase_StartDirect(t *testing.T) {
	ctx := context.Background()
	logger.SetNewNop()

	t.Run("creates when no direct conversation exists", func(t *testing.T) {
		convRepo := new(MockConversationRepo)
		convRepo.On("FindDirect", ctx, "alice", "bob").Return(nil, errors.New("not found")).Once()
		convRepo.On("Create", ctx, mock.MatchedBy(func(conv *domain.Conversation) bool {
			return conv.Type == domain.ConversationDirect && len(conv.Participants) == 2
		})).Return(nil).Once()

		uc := NewConversationUseCase(convRepo, new(MockMessageRepo))
		conv, err := uc.StartDirect(ctx, "alice", "bob")

		assert.NoError(t, err)
		assert.NotEmpty(t, conv.ID)
		convRepo.AssertExpectations(t)
	})

	t.Run("resumes the existing conversation", func(t *testing.T) {
		convRepo := new(MockConversationRepo)
		existing := &domain.Conversation{ID: "existing", Type: domain.ConversationDirect, Participants: []string{"alice", "bob"}}
		convRepo.On("FindDirect", ctx, "alice", "bob").Return(existing, nil).Once()

		uc := NewConversationUseCase(convRepo, new(MockMessageRepo))
		conv, err := uc.StartDirect(ctx, "alice", "bob")

		assert.NoError(t, err)
		assert.Equal(t, "existing", conv.ID)
		convRepo.AssertNotCalled(t, "Create")
	})

	t.Run("rejects self and empty counterpart", func(t *testing.T) {
		uc := NewConversationUseCase(new(MockConversationRepo), new(MockMessageRepo))

		_, err := uc.StartDirect(ctx, "alice", "alice")
		assert.Error(t, err)

		_, err = uc.StartDirect(ctx, "alice", "")
		assert.Error(t, err)
	})
}

func TestConversationUseCase_Toggles(t *testing.T) {
	ctx := context.Background()
	logger.SetNewNop()

	convRepo := new(MockConversationRepo)
	convRepo.On("TogglePin", ctx, "conv-1", "alice").Return(nil).Once()
	convRepo.On("ToggleArchive", ctx, "conv-1", "alice").Return(nil).Once()

	uc := NewConversationUseCase(convRepo, new(MockMessageRepo))
	assert.NoError(t, uc.TogglePin(ctx, "conv-1", "alice"))
	assert.NoError(t, uc.ToggleArchive(ctx, "conv-1", "alice"))
	convRepo.AssertExpectations(t)
}
