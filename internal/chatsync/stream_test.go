package chatsync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chat_sync_service/internal/chat/domain"
)

func msg(id, sender string, at int64) domain.Message {
	return domain.Message{ID: id, ConversationID: "c1", SenderID: sender, Content: id, CreatedAt: at}
}

func TestStream_OrderedInsert(t *testing.T) {
	s := NewStream(me)
	s.Apply(msg("m2", "user-a", 20))
	s.Apply(msg("m1", "user-a", 10))
	s.Apply(msg("m3", "user-a", 30))

	got := s.Visible()
	assert.Len(t, got, 3)
	assert.Equal(t, "m1", got[0].ID)
	assert.Equal(t, "m2", got[1].ID)
	assert.Equal(t, "m3", got[2].ID)
}

func TestStream_EqualTimestampTiebreak(t *testing.T) {
	s := NewStream(me)
	s.Apply(msg("b", "user-a", 10))
	s.Apply(msg("a", "user-a", 10))

	got := s.Visible()
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}

func TestStream_ApplyReplacesByID(t *testing.T) {
	s := NewStream(me)
	s.Apply(msg("m1", "user-a", 10))

	edited := msg("m1", "user-a", 10)
	edited.Content = "edited"
	edited.IsEdited = true
	s.Apply(edited)

	assert.Equal(t, 1, s.Len())
	got, ok := s.Find("m1")
	assert.True(t, ok)
	assert.Equal(t, "edited", got.Content)
	assert.True(t, got.IsEdited)
}

func TestStream_SenderHeadersCollapse(t *testing.T) {
	s := NewStream(me)
	s.Apply(msg("m1", "user-a", 10))
	s.Apply(msg("m2", "user-a", 20))
	s.Apply(msg("m3", me, 30))
	s.Apply(msg("m4", "user-a", 40))

	got := s.Visible()
	assert.True(t, got[0].ShowsSender)
	assert.False(t, got[1].ShowsSender)
	assert.True(t, got[2].ShowsSender)
	assert.True(t, got[3].ShowsSender)
}

func TestStream_DeletedForMeMergesRuns(t *testing.T) {
	s := NewStream(me)
	s.Apply(msg("m1", "user-a", 10))
	hidden := msg("m2", me, 20)
	hidden.DeletedFor = []string{me}
	s.Apply(hidden)
	s.Apply(msg("m3", "user-a", 30))

	got := s.Visible()
	assert.Len(t, got, 2)
	assert.Equal(t, "m1", got[0].ID)
	assert.Equal(t, "m3", got[1].ID)
	// the runs around the hidden message merge into one
	assert.False(t, got[1].ShowsSender)
}

func TestStream_DeleteForEveryoneStaysVisible(t *testing.T) {
	s := NewStream(me)
	tomb := msg("m1", "user-a", 10)
	tomb.IsDeleted = true
	tomb.Content = ""
	s.Apply(tomb)

	got := s.Visible()
	assert.Len(t, got, 1)
	assert.True(t, got[0].IsDeleted)
	assert.Empty(t, got[0].Content)
}

func TestStream_ReceiptFlipsDelivery(t *testing.T) {
	s := NewStream(me)
	s.Apply(msg("m1", me, 10))
	s.Apply(msg("m2", "user-a", 20))

	assert.Equal(t, StatusSent, s.DeliveryOf("m1"))

	s.ApplyReceipt("user-a")
	assert.Equal(t, StatusRead, s.DeliveryOf("m1"))

	// the reader's own message is untouched
	got, _ := s.Find("m2")
	assert.False(t, got.IsReadBy("user-a"))

	// replaying the receipt changes nothing
	s.ApplyReceipt("user-a")
	got, _ = s.Find("m1")
	assert.Equal(t, []string{"user-a"}, got.ReadBy)
}
