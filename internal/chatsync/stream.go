package chatsync

import (
	"chat_sync_service/internal/chat/domain"
)

// DeliveryStatus is the two-state send indicator shown on own messages
type DeliveryStatus string

const (
	// StatusSent accepted by the server, not yet read by anyone else
	StatusSent DeliveryStatus = "sent"
	// StatusRead at least one other participant has read it
	StatusRead DeliveryStatus = "read"
)

// VisibleMessage is a message decorated for rendering
type VisibleMessage struct {
	domain.Message
	// ShowsSender is false when the previous visible message has the
	// same sender, so consecutive runs collapse into one header
	ShowsSender bool
}

// Stream holds the ordered message history of one open conversation.
// All access happens on the session loop.
type Stream struct {
	userID string
	msgs   []domain.Message
}

// NewStream create Stream
func NewStream(userID string) *Stream {
	return &Stream{userID: userID}
}

// Replace swaps in a full history fetch. Ordering is by creation time
// with ID as tiebreak.
func (s *Stream) Replace(msgs []domain.Message) {
	s.msgs = append([]domain.Message(nil), msgs...)
	domain.SortMessages(s.msgs)
}

// Apply inserts a new message at its ordered position, or replaces the
// stored copy when the ID is already present (edit, delete, re-fetch
// overlap). Replays are therefore idempotent.
func (s *Stream) Apply(msg domain.Message) {
	for i := range s.msgs {
		if s.msgs[i].ID == msg.ID {
			s.msgs[i] = msg
			return
		}
	}
	pos := len(s.msgs)
	for i := range s.msgs {
		if msg.Before(&s.msgs[i]) {
			pos = i
			break
		}
	}
	s.msgs = append(s.msgs, domain.Message{})
	copy(s.msgs[pos+1:], s.msgs[pos:])
	s.msgs[pos] = msg
}

// ApplyReceipt records that reader has read every message in the
// stream not sent by reader. Applying the same receipt twice is a
// no-op.
func (s *Stream) ApplyReceipt(reader string) {
	for i := range s.msgs {
		m := &s.msgs[i]
		if m.SenderID == reader || m.IsReadBy(reader) {
			continue
		}
		m.ReadBy = append(m.ReadBy, reader)
	}
}

// Len returns the raw stored count, deleted-for-me included
func (s *Stream) Len() int {
	return len(s.msgs)
}

// Find returns a copy of the stored message by ID
func (s *Stream) Find(messageID string) (domain.Message, bool) {
	for i := range s.msgs {
		if s.msgs[i].ID == messageID {
			return s.msgs[i], true
		}
	}
	return domain.Message{}, false
}

// Visible renders the stream for the current user: messages the user
// deleted for themselves drop out entirely, and sender headers collapse
// over the remaining sequence, so a hidden message can merge the runs
// around it.
func (s *Stream) Visible() []VisibleMessage {
	var out []VisibleMessage
	prevSender := ""
	for i := range s.msgs {
		m := s.msgs[i]
		if m.HiddenFor(s.userID) {
			continue
		}
		out = append(out, VisibleMessage{
			Message:     m,
			ShowsSender: m.SenderID != prevSender,
		})
		prevSender = m.SenderID
	}
	return out
}

// DeliveryOf reports the indicator for one of the user's own messages
func (s *Stream) DeliveryOf(messageID string) DeliveryStatus {
	if m, ok := s.Find(messageID); ok && m.ReadByOther() {
		return StatusRead
	}
	return StatusSent
}
