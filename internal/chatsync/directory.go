package chatsync

import (
	"sort"
	"strings"

	"chat_sync_service/internal/chat/domain"
)

// Section partitions the directory listing
type Section int

const (
	// SectionAll no partition filter
	SectionAll Section = iota
	// SectionPrimary conversations neither archived nor unresolved
	SectionPrimary
	// SectionOther archived-by-user or unknown counterpart identity
	SectionOther
)

// FilterOptions compose the directory filters, independent of the sort
type FilterOptions struct {
	Query      string
	UnreadOnly bool
	Section    Section
}

// Directory is the locally-cached conversation list for the signed-in
// user. Unread counters here are the live session counters, exact while
// the session runs; a Replace from the store resets them to the
// boolean-derived indicator.
type Directory struct {
	userID string
	convs  map[string]*domain.Conversation
	stale  bool
}

// NewDirectory create Directory
func NewDirectory(userID string) *Directory {
	return &Directory{
		userID: userID,
		convs:  map[string]*domain.Conversation{},
	}
}

// Replace swaps in a freshly loaded conversation list
func (d *Directory) Replace(convs []domain.Conversation) {
	d.convs = make(map[string]*domain.Conversation, len(convs))
	for i := range convs {
		c := convs[i]
		d.convs[c.ID] = &c
	}
	d.stale = false
}

// Put adds or overwrites one conversation, keeping the live counter
func (d *Directory) Put(conv domain.Conversation) {
	if cached, ok := d.convs[conv.ID]; ok {
		conv.Unread = cached.Unread
	}
	d.convs[conv.ID] = &conv
}

// TogglePin flips the current user's pin on a cached conversation
func (d *Directory) TogglePin(conversationID string) {
	if conv, ok := d.convs[conversationID]; ok {
		conv.PinnedBy = toggleMember(conv.PinnedBy, d.userID)
	}
}

// ToggleArchive flips the current user's archive flag
func (d *Directory) ToggleArchive(conversationID string) {
	if conv, ok := d.convs[conversationID]; ok {
		conv.ArchivedBy = toggleMember(conv.ArchivedBy, d.userID)
	}
}

func toggleMember(list []string, userID string) []string {
	for i, v := range list {
		if v == userID {
			return append(list[:i], list[i+1:]...)
		}
	}
	return append(list, userID)
}

// Get returns the cached conversation or nil
func (d *Directory) Get(conversationID string) *domain.Conversation {
	return d.convs[conversationID]
}

// Known check the conversation is cached
func (d *Directory) Known(conversationID string) bool {
	_, ok := d.convs[conversationID]
	return ok
}

// ApplyMessage folds an incoming message into the directory. viewing
// must be true only when the conversation is the single open,
// non-minimized window. Returns false when the conversation is unknown,
// the caller must then reload the directory.
func (d *Directory) ApplyMessage(msg *domain.Message, viewing bool) bool {
	conv, ok := d.convs[msg.ConversationID]
	if !ok {
		d.stale = true
		return false
	}

	conv.LastMessage = msg

	// the live counter moves by exactly one per foreign message while
	// the conversation is not actively viewed, and never for own sends
	if msg.SenderID != d.userID && !viewing {
		conv.Unread++
	}
	return true
}

// ApplyUpdate refreshes the last-message preview after an edit or delete
func (d *Directory) ApplyUpdate(msg *domain.Message) {
	conv, ok := d.convs[msg.ConversationID]
	if !ok {
		return
	}
	if conv.LastMessage != nil && conv.LastMessage.ID == msg.ID {
		conv.LastMessage = msg
	}
}

// ClearUnread zeroes the live counter. Only full mark-read transitions
// call this, nothing else may decrement.
func (d *Directory) ClearUnread(conversationID string) {
	if conv, ok := d.convs[conversationID]; ok {
		conv.Unread = 0
	}
}

// MarkStale flags that the cache missed an event
func (d *Directory) MarkStale() {
	d.stale = true
}

// IsStale check the cache needs a reload
func (d *Directory) IsStale() bool {
	return d.stale
}

// Sorted returns the conversations in display order:
// pinned-by-current-user first as a stable group, then last activity
// descending. Pin state is the strict primary key.
func (d *Directory) Sorted() []domain.Conversation {
	out := make([]domain.Conversation, 0, len(d.convs))
	for _, c := range d.convs {
		out = append(out, *c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].IsPinnedBy(d.userID), out[j].IsPinnedBy(d.userID)
		if pi != pj {
			return pi
		}
		if out[i].LastActivity() != out[j].LastActivity() {
			return out[i].LastActivity() > out[j].LastActivity()
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Filtered applies the composable filter predicates on top of the sort
func (d *Directory) Filtered(opts FilterOptions) []domain.Conversation {
	var out []domain.Conversation
	query := strings.ToLower(opts.Query)

	for _, c := range d.Sorted() {
		if query != "" && !strings.Contains(strings.ToLower(c.DisplayName(d.userID)), query) {
			continue
		}
		if opts.UnreadOnly && c.Unread == 0 {
			continue
		}
		if opts.Section != SectionAll && d.sectionOf(&c) != opts.Section {
			continue
		}
		out = append(out, c)
	}
	return out
}

// sectionOf: "other" holds what the user archived plus direct chats
// whose counterpart cannot be resolved
func (d *Directory) sectionOf(c *domain.Conversation) Section {
	if c.IsArchivedBy(d.userID) {
		return SectionOther
	}
	if c.Type == domain.ConversationDirect && c.Counterpart(d.userID) == "" {
		return SectionOther
	}
	return SectionPrimary
}
