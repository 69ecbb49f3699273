package titan

import (
	"sync"
	"time"
)

// DefaultRecentLimit is how many conversations the recents list keeps.
const DefaultRecentLimit = 15

// RecentChat is one entry of the recents list.
type RecentChat struct {
	ID        string
	Title     string
	Timestamp time.Time
}

// RecentChats is an in-memory, most-recent-first list of conversations.
// It is safe for concurrent use.
type RecentChats struct {
	mu    sync.Mutex
	limit int
	chats []RecentChat
	now   func() time.Time
}

// NewRecentChats returns an empty list holding at most limit entries.
// A non-positive limit selects DefaultRecentLimit.
func NewRecentChats(limit int) *RecentChats {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return &RecentChats{limit: limit, now: time.Now}
}

// Add puts the conversation at the top, moving it if already present.
func (r *RecentChats) Add(id, title string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := make([]RecentChat, 0, len(r.chats)+1)
	kept = append(kept, RecentChat{ID: id, Title: title, Timestamp: r.now()})
	for _, c := range r.chats {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) > r.limit {
		kept = kept[:r.limit]
	}
	r.chats = kept
}

// List returns a copy of the entries, most recent first.
func (r *RecentChats) List() []RecentChat {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RecentChat, len(r.chats))
	copy(out, r.chats)
	return out
}

// Len returns the number of entries.
func (r *RecentChats) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.chats)
}
