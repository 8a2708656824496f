package poller

import (
	"slices"
	"strings"
	"sync"

	"github.com/berlincodez/Campus-Skill-link/internal/model"
)

// Inbox is the client-side state the loop reconciles into: the conversation list keyed by
// connection id and the messages of the open thread.
type Inbox struct {
	mu       sync.RWMutex
	byID     map[string]model.Conversation
	order    []string
	active   string
	gen      uint64
	messages []model.Message
	loaded   bool
}

func NewInbox() *Inbox {
	return &Inbox{byID: make(map[string]model.Conversation)}
}

// MergeConversations reconciles a fresh inbox by connection id. Threads missing from the
// response are dropped, the open thread keeps a zero unread count.
func (i *Inbox) MergeConversations(convs []model.Conversation) {
	next := make(map[string]model.Conversation, len(convs))
	for _, c := range convs {
		if _, dup := next[c.ConnectionID]; dup {
			continue
		}
		next[c.ConnectionID] = c
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if conv, ok := next[i.active]; ok {
		conv.UnreadCount = 0
		next[i.active] = conv
	}

	i.byID = next
	i.resort()
	i.loaded = true
}

// resort rebuilds order from byID. Callers hold the write lock.
func (i *Inbox) resort() {
	sorted := make([]model.Conversation, 0, len(i.byID))
	for _, c := range i.byID {
		sorted = append(sorted, c)
	}
	// map iteration is random; ties on the timestamp fall back to the id
	slices.SortFunc(sorted, func(a, b model.Conversation) int {
		if c := b.SortKey().Compare(a.SortKey()); c != 0 {
			return c
		}
		return strings.Compare(a.ConnectionID, b.ConnectionID)
	})

	i.order = i.order[:0]
	for _, c := range sorted {
		i.order = append(i.order, c.ConnectionID)
	}
}

// Conversations returns a sorted snapshot.
func (i *Inbox) Conversations() []model.Conversation {
	i.mu.RLock()
	defer i.mu.RUnlock()

	out := make([]model.Conversation, 0, len(i.order))
	for _, id := range i.order {
		out = append(out, i.byID[id])
	}
	return out
}

func (i *Inbox) Conversation(connectionID string) (model.Conversation, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	c, ok := i.byID[connectionID]
	return c, ok
}

func (i *Inbox) Loaded() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.loaded
}

func (i *Inbox) TotalUnread() int64 {
	i.mu.RLock()
	defer i.mu.RUnlock()

	var total int64
	for _, c := range i.byID {
		total += c.UnreadCount
	}
	return total
}

// Open switches the active thread, clears its messages and zeroes its unread count. The
// returned generation tags fetches so that responses for a previous thread are discarded.
func (i *Inbox) Open(connectionID string) uint64 {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.gen++
	i.active = connectionID
	i.messages = nil
	if conv, ok := i.byID[connectionID]; ok {
		conv.UnreadCount = 0
		i.byID[connectionID] = conv
	}
	return i.gen
}

// Close leaves the active thread.
func (i *Inbox) Close() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.gen++
	i.active = ""
	i.messages = nil
}

func (i *Inbox) Active() (string, uint64) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.active, i.gen
}

// ReplaceMessages installs a full thread fetch if gen is still current.
func (i *Inbox) ReplaceMessages(gen uint64, msgs []model.Message) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	if gen != i.gen {
		return false
	}
	i.messages = slices.Clone(msgs)
	return true
}

// AppendMessage adds a locally sent message unless a poll already delivered it.
func (i *Inbox) AppendMessage(gen uint64, msg model.Message) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	if gen != i.gen {
		return false
	}
	if slices.ContainsFunc(i.messages, func(m model.Message) bool { return m.ID == msg.ID }) {
		return false
	}
	i.messages = append(i.messages, msg)

	if conv, ok := i.byID[i.active]; ok {
		conv.LastMessage = model.NewLastMessage(&msg)
		i.byID[i.active] = conv
		i.resort()
	}
	return true
}

func (i *Inbox) Messages() []model.Message {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return slices.Clone(i.messages)
}
