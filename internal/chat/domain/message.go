package domain

import (
	"sort"

	"chat_sync_service/pkg"
)

// Attachment definition an uploaded file reference, the store only ever
// holds a URL and type, never bytes.
type Attachment struct {
	URL         string `bson:"url" json:"url"`
	Name        string `bson:"name,omitempty" json:"name,omitempty"`
	ContentType string `bson:"content_type,omitempty" json:"content_type,omitempty"`
}

// DeleteMode selects between the two message deletion behaviors
type DeleteMode string

const (
	//DeleteForMe hides the message for the deleting user only
	DeleteForMe DeleteMode = "me"
	//DeleteForEveryone tombstones the message for all participants, one-way
	DeleteForEveryone DeleteMode = "everyone"
)

// Message definition a chat message. Soft-deleted only: IsDeleted is a
// one-way transition, DeletedFor is per-recipient.
type Message struct {
	ID             string       `bson:"_id,omitempty" json:"id"`
	ConversationID string       `bson:"conversation_id" json:"conversation_id"`
	SenderID       string       `bson:"sender_id" json:"sender_id"`
	Content        string       `bson:"content" json:"content"`
	Attachments    []Attachment `bson:"attachments,omitempty" json:"attachments,omitempty"`
	IsDeleted      bool         `bson:"is_deleted" json:"is_deleted"`
	DeletedFor     []string     `bson:"deleted_for,omitempty" json:"deleted_for,omitempty"`
	IsEdited       bool         `bson:"is_edited" json:"is_edited"`
	StarredBy      []string     `bson:"starred_by,omitempty" json:"starred_by,omitempty"`
	ReadBy         []string     `bson:"read_by,omitempty" json:"read_by,omitempty"`
	CreatedAt      int64        `bson:"created_at" json:"created_at"`
}

// Before establishes the total order within a conversation:
// created-at first, id as tiebreak.
func (m *Message) Before(other *Message) bool {
	if m.CreatedAt != other.CreatedAt {
		return m.CreatedAt < other.CreatedAt
	}
	return m.ID < other.ID
}

// HiddenFor check the message is deleted-for-me by the user
func (m *Message) HiddenFor(userID string) bool {
	return pkg.Contains(m.DeletedFor, userID)
}

// IsReadBy check the user is in the read set
func (m *Message) IsReadBy(userID string) bool {
	return pkg.Contains(m.ReadBy, userID)
}

// IsStarredBy check the user is in the starred set
func (m *Message) IsStarredBy(userID string) bool {
	return pkg.Contains(m.StarredBy, userID)
}

// ReadByOther reports whether anyone besides the sender has read the
// message. There is no separate delivered-but-unread state.
func (m *Message) ReadByOther() bool {
	for _, r := range m.ReadBy {
		if r != m.SenderID {
			return true
		}
	}
	return false
}

// SortMessages sorts in conversation order, stable under out-of-order
// arrival from the event bus.
func SortMessages(msgs []Message) {
	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].Before(&msgs[j])
	})
}
