package model

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conversation is the inbox view of a Connection for one requesting user. It is derived on
// every request and never persisted.
type Conversation struct {
	ConnectionID string         `json:"connectionId"`
	IsGroup      bool           `json:"isGroup"`
	Status       string         `json:"status"`
	OtherUser    *PublicProfile `json:"otherUser"`
	Group        *GroupSummary  `json:"group"`
	LastMessage  *LastMessage   `json:"lastMessage"`
	UnreadCount  int64          `json:"unreadCount"`
	Post         *PostSummary   `json:"post"`
}

// LastMessage stores the most recent message preview
type LastMessage struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	SenderID  string    `json:"senderId"`
	CreatedAt time.Time `json:"createdAt"`
}

// GroupSummary is the display identity of a group thread.
type GroupSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PostSummary is the originating post of a 1:1 thread.
type PostSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func NewLastMessage(m *Message) *LastMessage {
	if m == nil {
		return nil
	}
	return &LastMessage{
		ID:        m.ID.Hex(),
		Text:      m.Text,
		SenderID:  m.SenderID,
		CreatedAt: m.CreatedAt,
	}
}

// SortKey is the timestamp used to order the inbox; threads without messages sort as the
// zero time.
func (c *Conversation) SortKey() time.Time {
	if c.LastMessage == nil {
		return time.Time{}
	}
	return c.LastMessage.CreatedAt
}

// ParseID normalizes a hex identifier from the request boundary.
func ParseID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

// SortConversations orders the inbox by last activity, newest first. Threads without
// messages keep their relative order at the end.
func SortConversations(convs []Conversation) {
	slices.SortStableFunc(convs, func(a, b Conversation) int {
		return b.SortKey().Compare(a.SortKey())
	})
}
