package unit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chat_sync_service/internal/chat/domain"
)

func TestMessageOrdering(t *testing.T) {
	msgs := []domain.Message{
		{ID: "b", CreatedAt: 20},
		{ID: "c", CreatedAt: 10},
		{ID: "a", CreatedAt: 20},
	}
	domain.SortMessages(msgs)

	assert.Equal(t, "c", msgs[0].ID)
	// equal creation times fall back to the id
	assert.Equal(t, "a", msgs[1].ID)
	assert.Equal(t, "b", msgs[2].ID)
}

func TestMessageVisibilityHelpers(t *testing.T) {
	msg := domain.Message{
		ID:         "m1",
		SenderID:   "alice",
		ReadBy:     []string{"alice"},
		DeletedFor: []string{"bob"},
	}

	assert.True(t, msg.HiddenFor("bob"))
	assert.False(t, msg.HiddenFor("alice"))

	// only a reader other than the sender flips the indicator
	assert.False(t, msg.ReadByOther())
	msg.ReadBy = append(msg.ReadBy, "bob")
	assert.True(t, msg.ReadByOther())
}

func TestConversationDisplayName(t *testing.T) {
	conv := domain.Conversation{
		Type:         domain.ConversationDirect,
		Participants: []string{"alice", "bob"},
	}

	assert.Equal(t, "bob", conv.DisplayName("alice"))
	assert.Equal(t, "alice", conv.DisplayName("bob"))

	conv.Name = "Our Chat"
	assert.Equal(t, "Our Chat", conv.DisplayName("alice"))

	// the counterpart of a degenerate direct chat is unresolved
	solo := domain.Conversation{Type: domain.ConversationDirect, Participants: []string{"alice"}}
	assert.Equal(t, "", solo.Counterpart("alice"))
}

func TestConversationLastActivity(t *testing.T) {
	conv := domain.Conversation{CreatedAt: 100}
	assert.Equal(t, int64(100), conv.LastActivity())

	conv.LastMessage = &domain.Message{CreatedAt: 200}
	assert.Equal(t, int64(200), conv.LastActivity())
}
