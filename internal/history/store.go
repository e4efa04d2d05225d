package history

import "context"

// Entry is one conversation turn. Immutable once appended.
type Entry struct {
	Role    string `json:"role"` // user, assistant
	Content string `json:"content"`
}

// DefaultCap bounds a session at 20 entries (10 exchanges); appends beyond it
// evict from the front, oldest first.
const DefaultCap = 20

// Store keeps bounded, session-keyed conversation history. Sessions are
// created on first append (not on read) and live until cleared.
type Store interface {
	// Get returns the session's entries in order; unknown keys yield an
	// empty list without creating the session.
	Get(ctx context.Context, sessionID string) ([]Entry, error)
	// Append adds entries to the session, evicting oldest entries once the
	// cap is exceeded.
	Append(ctx context.Context, sessionID string, entries ...Entry) error
	// Clear removes the session entirely, reporting whether it existed.
	Clear(ctx context.Context, sessionID string) (bool, error)
}
