package domain

// Action websocket request action
type Action string

const (
	// JoinConversation websocket action join_conversation
	JoinConversation Action = "join_conversation"
	// LeaveConversation websocket action leave_conversation
	LeaveConversation Action = "leave_conversation"

	// SendMessage websocket action send_message
	SendMessage Action = "send_message"
	// EditMessage websocket action edit_message
	EditMessage Action = "edit_message"
	// DeleteMessage websocket action delete_message
	DeleteMessage Action = "delete_message"
	// StarMessage websocket action star_message
	StarMessage Action = "star_message"
	// MarkRead websocket action mark_read
	MarkRead Action = "mark_read"
)

// Push event names, server to client.
const (
	// EventNewMessage a message was appended to a conversation
	EventNewMessage = "new_message"
	// EventMessageUpdated a message was edited, deleted or starred
	EventMessageUpdated = "message_updated"
	// EventMessagesRead a participant marked a conversation read
	EventMessagesRead = "messages_read"
)

// ReadReceipt payload of a messages_read event
type ReadReceipt struct {
	ConversationID string `json:"conversation_id"`
	ReadBy         string `json:"read_by"`
}

// Event is the envelope fanned out over the pub/sub rooms
type Event struct {
	Name    string       `json:"name"`
	Message *Message     `json:"message,omitempty"`
	Receipt *ReadReceipt `json:"receipt,omitempty"`
}

// WSRequest websocket Request
type WSRequest struct {
	Action         string       `json:"action"`
	ConversationID string       `json:"conversation_id"`
	MessageID      string       `json:"message_id"`
	Content        string       `json:"content"`
	Attachments    []Attachment `json:"attachments,omitempty"`
	Mode           string       `json:"mode"`
}

// WSResponse websocket Response
type WSResponse struct {
	Action  string                 `json:"action"`
	Success bool                   `json:"success"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// UserRoom pub/sub channel carrying cross-conversation events for a user
func UserRoom(userID string) string {
	return "chat:user:" + userID
}

// ConversationRoom pub/sub channel for one conversation
func ConversationRoom(conversationID string) string {
	return "chat:conv:" + conversationID
}
