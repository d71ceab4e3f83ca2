package chatsync

// WindowState tags one conversation's client window
type WindowState int

const (
	// WindowClosed the conversation has no visible window
	WindowClosed WindowState = iota
	// WindowMinimized the window occupies the slot but is not viewed
	WindowMinimized
	// WindowOpen the window is the one actively viewed conversation
	WindowOpen
)

// WindowManager enforces the single-slot policy: at most one
// conversation holds a window at any time, and only an open,
// non-minimized window counts as actively viewed.
type WindowManager struct {
	states   map[string]WindowState
	occupant string
}

// NewWindowManager create WindowManager
func NewWindowManager() *WindowManager {
	return &WindowManager{
		states: map[string]WindowState{},
	}
}

// Open forces the conversation into the open state, evicting whichever
// conversation held the slot. Returns the evicted conversation id,
// empty when the slot was free or already held by id.
func (w *WindowManager) Open(conversationID string) (evicted string) {
	if w.occupant != "" && w.occupant != conversationID {
		evicted = w.occupant
		delete(w.states, evicted)
	}
	w.occupant = conversationID
	w.states[conversationID] = WindowOpen
	return evicted
}

// Minimize drops the open window to minimized, it keeps the slot
func (w *WindowManager) Minimize(conversationID string) {
	if w.states[conversationID] == WindowOpen {
		w.states[conversationID] = WindowMinimized
	}
}

// Restore raises a minimized window back to open. Returns true only on
// that transition, a closed or already-open conversation is untouched.
func (w *WindowManager) Restore(conversationID string) bool {
	if w.states[conversationID] != WindowMinimized {
		return false
	}
	w.states[conversationID] = WindowOpen
	return true
}

// Close removes the window entirely. A pure UI action, it does not
// touch server-side membership or read state.
func (w *WindowManager) Close(conversationID string) {
	if w.occupant == conversationID {
		w.occupant = ""
	}
	delete(w.states, conversationID)
}

// StateOf returns the window state, WindowClosed when absent
func (w *WindowManager) StateOf(conversationID string) WindowState {
	return w.states[conversationID]
}

// IsViewing reports whether the conversation is the single open,
// non-minimized window
func (w *WindowManager) IsViewing(conversationID string) bool {
	return w.states[conversationID] == WindowOpen
}

// Occupant returns the conversation currently holding the slot, open or
// minimized, empty when the slot is free
func (w *WindowManager) Occupant() string {
	return w.occupant
}

// OpenCount counts windows in the open state, it can never exceed one
func (w *WindowManager) OpenCount() int {
	n := 0
	for _, st := range w.states {
		if st == WindowOpen {
			n++
		}
	}
	return n
}
