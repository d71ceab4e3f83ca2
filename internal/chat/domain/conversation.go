package domain

import "chat_sync_service/pkg"

// ConversationType definition conversation type
type ConversationType string

const (
	//ConversationDirect 1 on 1 conversation
	ConversationDirect ConversationType = "direct"
	//ConversationGroup group conversation
	ConversationGroup ConversationType = "group"
)

// Conversation definition a chat between two or more participants.
// Unread is client-derived state, never persisted; the readBy sets on
// the message log are the source of truth.
type Conversation struct {
	ID           string           `bson:"_id,omitempty" json:"id"`
	Type         ConversationType `bson:"type" json:"type"`
	Name         string           `bson:"name,omitempty" json:"name,omitempty"`
	Participants []string         `bson:"participants" json:"participants"`
	PinnedBy     []string         `bson:"pinned_by,omitempty" json:"pinned_by,omitempty"`
	ArchivedBy   []string         `bson:"archived_by,omitempty" json:"archived_by,omitempty"`
	LastMessage  *Message         `bson:"last_message,omitempty" json:"last_message,omitempty"`
	CreatedAt    int64            `bson:"created_at" json:"created_at"`

	Unread int `bson:"-" json:"unread"`
}

// IsPinnedBy check the conversation is pinned by the user
func (c *Conversation) IsPinnedBy(userID string) bool {
	return pkg.Contains(c.PinnedBy, userID)
}

// IsArchivedBy check the conversation is archived by the user
func (c *Conversation) IsArchivedBy(userID string) bool {
	return pkg.Contains(c.ArchivedBy, userID)
}

// Counterpart returns the other participant of a direct conversation,
// empty when the counterpart cannot be resolved.
func (c *Conversation) Counterpart(userID string) string {
	if c.Type != ConversationDirect {
		return ""
	}
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}

// DisplayName returns the explicit name, falling back to the direct
// counterpart id.
func (c *Conversation) DisplayName(userID string) string {
	if c.Name != "" {
		return c.Name
	}
	return c.Counterpart(userID)
}

// LastActivity returns the timestamp used for directory ordering
func (c *Conversation) LastActivity() int64 {
	if c.LastMessage != nil {
		return c.LastMessage.CreatedAt
	}
	return c.CreatedAt
}
