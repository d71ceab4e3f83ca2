package chatsync

import (
	"context"
	"strings"
	"sync"

	"chat_sync_service/internal/chat/domain"
	"chat_sync_service/pkg/logger"
)

// Session is the client sync core for one signed-in user. Every
// mutation of its state runs on a single internal loop goroutine, so
// the transport callbacks, store completions and UI calls never race.
// Public methods post work to the loop and return immediately; async
// store calls carry an epoch so a response that arrives after the
// window moved on is discarded instead of applied.
type Session struct {
	userID    string
	transport Transport
	convStore ConversationStore
	msgStore  MessageStore

	directory *Directory
	windows   *WindowManager
	streams   map[string]*Stream
	epochs    map[string]uint64

	loop chan func()
	quit chan struct{}
	wg   sync.WaitGroup

	inflight   sync.WaitGroup
	loadingDir bool
}

// NewSession create Session
func NewSession(userID string, transport Transport, convStore ConversationStore, msgStore MessageStore) *Session {
	return &Session{
		userID:    userID,
		transport: transport,
		convStore: convStore,
		msgStore:  msgStore,
		directory: NewDirectory(userID),
		windows:   NewWindowManager(),
		streams:   map[string]*Stream{},
		epochs:    map[string]uint64{},
		loop:      make(chan func(), 128),
		quit:      make(chan struct{}),
	}
}

// Start connects the transport, registers the event handlers and runs
// the loop until Stop
func (s *Session) Start(ctx context.Context) error {
	s.transport.On(domain.EventNewMessage, func(ev domain.Event) {
		s.post(func() { s.onNewMessage(ev) })
	})
	s.transport.On(domain.EventMessageUpdated, func(ev domain.Event) {
		s.post(func() { s.onMessageUpdated(ev) })
	})
	s.transport.On(domain.EventMessagesRead, func(ev domain.Event) {
		s.post(func() { s.onMessagesRead(ev) })
	})
	s.transport.OnReconnect(func() {
		s.post(func() { s.reconcile() })
	})

	if err := s.transport.Connect(ctx, s.userID); err != nil {
		return err
	}

	s.wg.Add(1)
	go s.run()

	s.post(func() { s.loadDirectory() })
	return nil
}

// Stop shuts down the loop and the transport
func (s *Session) Stop() {
	close(s.quit)
	s.wg.Wait()
	s.transport.Disconnect()
}

func (s *Session) run() {
	defer s.wg.Done()
	for {
		select {
		case fn := <-s.loop:
			fn()
		case <-s.quit:
			return
		}
	}
}

func (s *Session) post(fn func()) {
	select {
	case s.loop <- fn:
	case <-s.quit:
	}
}

// ---- conversation directory ----

// Conversations returns the directory in display order
func (s *Session) Conversations() []domain.Conversation {
	return call(s, func() []domain.Conversation { return s.directory.Sorted() })
}

// FilteredConversations applies search, unread-only and section filters
func (s *Session) FilteredConversations(opts FilterOptions) []domain.Conversation {
	return call(s, func() []domain.Conversation { return s.directory.Filtered(opts) })
}

// StartDirect opens (or resumes) the direct conversation with otherID
// and focuses it
func (s *Session) StartDirect(otherID string) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		conv, err := s.convStore.StartDirect(context.Background(), otherID)
		if err != nil {
			logger.Log.Errorf("start direct error:", err)
			return
		}
		s.post(func() {
			s.directory.Put(*conv)
			s.openConversation(conv.ID)
		})
	}()
}

// TogglePin flips the pin for the current user and re-sorts locally
func (s *Session) TogglePin(conversationID string) {
	s.togglePreference(conversationID, s.convStore.TogglePin, s.directory.TogglePin)
}

// ToggleArchive flips the archive flag for the current user
func (s *Session) ToggleArchive(conversationID string) {
	s.togglePreference(conversationID, s.convStore.ToggleArchive, s.directory.ToggleArchive)
}

// togglePreference confirms the flip with the store before mutating the
// local cache, so the cache never diverges on a rejected toggle
func (s *Session) togglePreference(conversationID string, remote func(context.Context, string) error, local func(string)) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		if err := remote(context.Background(), conversationID); err != nil {
			logger.Log.Errorf("toggle preference error:", err)
			return
		}
		s.post(func() { local(conversationID) })
	}()
}

// ---- window lifecycle ----

// OpenConversation focuses a conversation: at most one window is open
// at a time, so any previous occupant is evicted and unloaded. The
// unread counter clears immediately, before the history arrives.
func (s *Session) OpenConversation(conversationID string) {
	s.post(func() { s.openConversation(conversationID) })
}

func (s *Session) openConversation(conversationID string) {
	evicted := s.windows.Open(conversationID)
	if evicted != "" && evicted != conversationID {
		delete(s.streams, evicted)
		s.transport.LeaveRoom(evicted)
	}

	s.directory.ClearUnread(conversationID)
	s.transport.JoinRoom(conversationID)

	if _, ok := s.streams[conversationID]; !ok {
		s.streams[conversationID] = NewStream(s.userID)
	}
	s.fetchHistory(conversationID)
	s.markRead(conversationID)
}

// Minimize hides the open window but keeps it loaded. A minimized
// conversation is not being viewed, so its counter moves again.
func (s *Session) Minimize(conversationID string) {
	s.post(func() { s.windows.Minimize(conversationID) })
}

// Restore brings a minimized window back to front; whatever arrived
// while it was hidden is read now
func (s *Session) Restore(conversationID string) {
	s.post(func() {
		if !s.windows.Restore(conversationID) {
			return
		}
		s.directory.ClearUnread(conversationID)
		s.markRead(conversationID)
	})
}

// CloseConversation discards the window and its loaded history
func (s *Session) CloseConversation(conversationID string) {
	s.post(func() {
		s.windows.Close(conversationID)
		delete(s.streams, conversationID)
		s.transport.LeaveRoom(conversationID)
	})
}

// WindowStateOf reports the UI state of a conversation window
func (s *Session) WindowStateOf(conversationID string) WindowState {
	return call(s, func() WindowState { return s.windows.StateOf(conversationID) })
}

// ---- message stream ----

// Messages returns the rendered history of a loaded conversation
func (s *Session) Messages(conversationID string) []VisibleMessage {
	return call(s, func() []VisibleMessage {
		if st, ok := s.streams[conversationID]; ok {
			return st.Visible()
		}
		return nil
	})
}

// DeliveryOf reports the sent/read indicator for one message
func (s *Session) DeliveryOf(conversationID, messageID string) DeliveryStatus {
	return call(s, func() DeliveryStatus {
		if st, ok := s.streams[conversationID]; ok {
			return st.DeliveryOf(messageID)
		}
		return StatusSent
	})
}

// Send submits a message over the live transport. Blank sends with no
// attachment are dropped locally.
func (s *Session) Send(conversationID, content string, attachments []domain.Attachment) {
	if strings.TrimSpace(content) == "" && len(attachments) == 0 {
		return
	}
	s.transport.Emit(domain.WSRequest{
		Action:         string(domain.SendMessage),
		ConversationID: conversationID,
		Content:        content,
		Attachments:    attachments,
	})
}

// Edit rewrites one of the user's own messages
func (s *Session) Edit(conversationID, messageID, content string) {
	if strings.TrimSpace(content) == "" {
		return
	}
	s.transport.Emit(domain.WSRequest{
		Action:         string(domain.EditMessage),
		ConversationID: conversationID,
		MessageID:      messageID,
		Content:        content,
	})
}

// Delete removes a message in the given mode, for-me or for-everyone
func (s *Session) Delete(conversationID, messageID string, mode domain.DeleteMode) {
	s.transport.Emit(domain.WSRequest{
		Action:         string(domain.DeleteMessage),
		ConversationID: conversationID,
		MessageID:      messageID,
		Mode:           string(mode),
	})
}

// ToggleStar flips the personal star on a message
func (s *Session) ToggleStar(conversationID, messageID string) {
	s.transport.Emit(domain.WSRequest{
		Action:         string(domain.StarMessage),
		ConversationID: conversationID,
		MessageID:      messageID,
	})
}

// ---- event handlers, loop goroutine only ----

func (s *Session) onNewMessage(ev domain.Event) {
	if ev.Message == nil {
		return
	}
	msg := *ev.Message
	viewing := s.windows.IsViewing(msg.ConversationID)

	if !s.directory.ApplyMessage(&msg, viewing) {
		// a conversation we have never seen, reload the list
		s.loadDirectory()
	}

	if st, ok := s.streams[msg.ConversationID]; ok {
		st.Apply(msg)
	}

	// reading happens only while the window is actually in front
	if viewing && msg.SenderID != s.userID {
		s.markRead(msg.ConversationID)
	}
}

func (s *Session) onMessageUpdated(ev domain.Event) {
	if ev.Message == nil {
		return
	}
	msg := *ev.Message
	s.directory.ApplyUpdate(&msg)
	if st, ok := s.streams[msg.ConversationID]; ok {
		st.Apply(msg)
	}
}

func (s *Session) onMessagesRead(ev domain.Event) {
	if ev.Receipt == nil {
		return
	}
	r := ev.Receipt
	if st, ok := s.streams[r.ConversationID]; ok {
		st.ApplyReceipt(r.ReadBy)
	}
	// own receipt from another device zeroes the counter here too
	if r.ReadBy == s.userID {
		s.directory.ClearUnread(r.ConversationID)
	}
}

// reconcile runs after the transport reconnects: events may have been
// missed while offline, so state is re-fetched rather than trusted
func (s *Session) reconcile() {
	s.loadDirectory()
	for id := range s.streams {
		s.fetchHistory(id)
	}
	// the push channel just came back, confirm the read state through
	// the store rather than racing an Emit against the rejoin
	if occ := s.windows.Occupant(); occ != "" && s.windows.IsViewing(occ) {
		s.inflight.Add(1)
		go func() {
			defer s.inflight.Done()
			if err := s.msgStore.MarkRead(context.Background(), occ); err != nil {
				logger.Log.Errorf("mark read error:", err)
			}
		}()
	}
}

// ---- async store calls ----

func (s *Session) loadDirectory() {
	if s.loadingDir {
		return
	}
	s.loadingDir = true
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		convs, err := s.convStore.List(context.Background())
		if err != nil {
			logger.Log.Errorf("load conversations error:", err)
			s.post(func() { s.loadingDir = false })
			return
		}
		s.post(func() {
			s.loadingDir = false
			// live counters survive the reload for the open window,
			// it was already cleared and stays cleared
			s.directory.Replace(convs)
			if occ := s.windows.Occupant(); occ != "" && s.windows.IsViewing(occ) {
				s.directory.ClearUnread(occ)
			}
		})
	}()
}

// fetchHistory asks the store for the full conversation history. The
// epoch guards against a slow response landing after the window was
// closed or replaced.
func (s *Session) fetchHistory(conversationID string) {
	s.epochs[conversationID]++
	epoch := s.epochs[conversationID]
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		msgs, err := s.msgStore.List(context.Background(), conversationID)
		if err != nil {
			logger.Log.Errorf("load messages error:", err)
			return
		}
		s.post(func() {
			if s.epochs[conversationID] != epoch {
				return
			}
			if st, ok := s.streams[conversationID]; ok {
				st.Replace(msgs)
			}
		})
	}()
}

// markRead is fire-and-forget, the server echoes a messages_read event
// that updates the stream
func (s *Session) markRead(conversationID string) {
	s.transport.Emit(domain.WSRequest{
		Action:         string(domain.MarkRead),
		ConversationID: conversationID,
	})
}

// call runs fn on the loop and waits for the result, used by the read
// accessors so callers always observe a consistent snapshot
func call[T any](s *Session, fn func() T) T {
	res := make(chan T, 1)
	s.post(func() { res <- fn() })
	select {
	case v := <-res:
		return v
	case <-s.quit:
		var zero T
		return zero
	}
}

// WaitIdle blocks until every in-flight store call has completed and
// the loop has drained, for tests. A completion may itself kick off
// another fetch, so drain until a full round stays quiet.
func (s *Session) WaitIdle() {
	for i := 0; i < 8; i++ {
		s.inflight.Wait()
		done := make(chan struct{})
		s.post(func() { close(done) })
		select {
		case <-done:
		case <-s.quit:
			return
		}
	}
}
