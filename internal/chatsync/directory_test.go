package chatsync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chat_sync_service/internal/chat/domain"
)

const me = "user-me"

func direct(id, other string, lastAt int64) domain.Conversation {
	c := domain.Conversation{
		ID:           id,
		Type:         domain.ConversationDirect,
		Participants: []string{me, other},
		CreatedAt:    lastAt,
	}
	if lastAt > 0 {
		c.LastMessage = &domain.Message{ID: id + "-last", ConversationID: id, SenderID: other, CreatedAt: lastAt}
	}
	return c
}

func TestDirectory_UnreadCounter(t *testing.T) {
	d := NewDirectory(me)
	d.Replace([]domain.Conversation{direct("c1", "user-a", 10)})

	msg := &domain.Message{ID: "m1", ConversationID: "c1", SenderID: "user-a", CreatedAt: 20}
	assert.True(t, d.ApplyMessage(msg, false))
	assert.Equal(t, 1, d.Get("c1").Unread)
	assert.Equal(t, "m1", d.Get("c1").LastMessage.ID)

	// a viewed conversation never counts
	msg2 := &domain.Message{ID: "m2", ConversationID: "c1", SenderID: "user-a", CreatedAt: 30}
	assert.True(t, d.ApplyMessage(msg2, true))
	assert.Equal(t, 1, d.Get("c1").Unread)

	// own messages never count
	mine := &domain.Message{ID: "m3", ConversationID: "c1", SenderID: me, CreatedAt: 40}
	assert.True(t, d.ApplyMessage(mine, false))
	assert.Equal(t, 1, d.Get("c1").Unread)

	d.ClearUnread("c1")
	assert.Equal(t, 0, d.Get("c1").Unread)
}

func TestDirectory_UnknownConversationMarksStale(t *testing.T) {
	d := NewDirectory(me)
	d.Replace(nil)

	msg := &domain.Message{ID: "m1", ConversationID: "mystery", SenderID: "user-a"}
	assert.False(t, d.ApplyMessage(msg, false))
	assert.True(t, d.IsStale())

	d.Replace([]domain.Conversation{direct("mystery", "user-a", 5)})
	assert.False(t, d.IsStale())
}

func TestDirectory_ApplyUpdateOnlyTouchesLastMessage(t *testing.T) {
	d := NewDirectory(me)
	c := direct("c1", "user-a", 10)
	d.Replace([]domain.Conversation{c})

	// an edit of an older message leaves the preview alone
	d.ApplyUpdate(&domain.Message{ID: "old", ConversationID: "c1", Content: "edited"})
	assert.Equal(t, "c1-last", d.Get("c1").LastMessage.ID)

	edited := &domain.Message{ID: "c1-last", ConversationID: "c1", Content: "edited", IsEdited: true}
	d.ApplyUpdate(edited)
	assert.Equal(t, "edited", d.Get("c1").LastMessage.Content)
}

func TestDirectory_SortPinnedFirstThenActivity(t *testing.T) {
	d := NewDirectory(me)
	pinned := direct("pinned-old", "user-a", 10)
	pinned.PinnedBy = []string{me}
	d.Replace([]domain.Conversation{
		direct("busy", "user-b", 100),
		pinned,
		direct("quiet", "user-c", 50),
	})

	got := d.Sorted()
	ids := []string{got[0].ID, got[1].ID, got[2].ID}
	// the stale pinned conversation still outranks the busy one
	assert.Equal(t, []string{"pinned-old", "busy", "quiet"}, ids)
}

func TestDirectory_Filters(t *testing.T) {
	d := NewDirectory(me)
	archived := direct("arch", "user-a", 10)
	archived.ArchivedBy = []string{me}
	unresolved := domain.Conversation{
		ID:           "solo",
		Type:         domain.ConversationDirect,
		Participants: []string{me},
		CreatedAt:    5,
	}
	named := direct("named", "user-b", 20)
	named.Name = "Weekend Plans"
	withUnread := direct("loud", "user-c", 30)
	d.Replace([]domain.Conversation{archived, unresolved, named, withUnread})
	d.ApplyMessage(&domain.Message{ID: "m", ConversationID: "loud", SenderID: "user-c", CreatedAt: 40}, false)

	primary := d.Filtered(FilterOptions{Section: SectionPrimary})
	assert.Len(t, primary, 2)

	other := d.Filtered(FilterOptions{Section: SectionOther})
	assert.Len(t, other, 2)

	unread := d.Filtered(FilterOptions{UnreadOnly: true})
	assert.Len(t, unread, 1)
	assert.Equal(t, "loud", unread[0].ID)

	byName := d.Filtered(FilterOptions{Query: "weekend"})
	assert.Len(t, byName, 1)
	assert.Equal(t, "named", byName[0].ID)

	// filters compose
	none := d.Filtered(FilterOptions{Query: "weekend", UnreadOnly: true})
	assert.Empty(t, none)
}

func TestDirectory_ToggleFlips(t *testing.T) {
	d := NewDirectory(me)
	d.Replace([]domain.Conversation{direct("c1", "user-a", 10)})

	d.TogglePin("c1")
	assert.True(t, d.Get("c1").IsPinnedBy(me))
	d.TogglePin("c1")
	assert.False(t, d.Get("c1").IsPinnedBy(me))

	d.ToggleArchive("c1")
	assert.True(t, d.Get("c1").IsArchivedBy(me))
}
