package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func strPtr(s string) *string { return &s }

func TestConnectionHasParticipant(t *testing.T) {
	direct := Connection{PostOwnerID: "owner", AcceptedByID: strPtr("acceptor")}
	group := Connection{PostOwnerID: "creator", IsGroup: true, Members: []string{"creator", "m1"}}

	assert.True(t, direct.HasParticipant("owner"))
	assert.True(t, direct.HasParticipant("acceptor"))
	assert.False(t, direct.HasParticipant("stranger"))
	assert.False(t, direct.HasParticipant(""))

	assert.True(t, group.HasParticipant("m1"))
	assert.True(t, group.HasParticipant("creator"))
	assert.False(t, group.HasParticipant("m2"))

	// members on a 1:1 thread grant nothing
	odd := Connection{PostOwnerID: "owner", Members: []string{"x"}}
	assert.False(t, odd.HasParticipant("x"))
}

func TestConnectionOtherParticipant(t *testing.T) {
	c := Connection{PostOwnerID: "owner", AcceptedByID: strPtr("acceptor")}
	assert.Equal(t, "acceptor", c.OtherParticipant("owner"))
	assert.Equal(t, "owner", c.OtherParticipant("acceptor"))

	noAcceptor := Connection{PostOwnerID: "owner"}
	assert.Equal(t, "", noAcceptor.OtherParticipant("owner"))
}

func TestSortConversations(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	at := func(id string, offset time.Duration) Conversation {
		return Conversation{ConnectionID: id, LastMessage: &LastMessage{CreatedAt: base.Add(offset)}}
	}

	convs := []Conversation{
		at("t3", 3*time.Minute),
		at("t1", time.Minute),
		{ConnectionID: "none"},
		at("t2", 2*time.Minute),
	}
	SortConversations(convs)

	ids := make([]string, 0, len(convs))
	for _, c := range convs {
		ids = append(ids, c.ConnectionID)
	}
	assert.Equal(t, []string{"t3", "t2", "t1", "none"}, ids)
}

func TestSortConversationsKeepsEmptyThreadsStable(t *testing.T) {
	convs := []Conversation{{ConnectionID: "a"}, {ConnectionID: "b"}, {ConnectionID: "c"}}
	SortConversations(convs)
	assert.Equal(t, "a", convs[0].ConnectionID)
	assert.Equal(t, "b", convs[1].ConnectionID)
	assert.Equal(t, "c", convs[2].ConnectionID)
}

func TestNewLastMessage(t *testing.T) {
	assert.Nil(t, NewLastMessage(nil))

	m := &Message{ID: primitive.NewObjectID(), SenderID: "u1", Text: "hi", CreatedAt: time.Now()}
	lm := NewLastMessage(m)
	require.NotNil(t, lm)
	assert.Equal(t, m.ID.Hex(), lm.ID)
	assert.Equal(t, "hi", lm.Text)
	assert.Equal(t, "u1", lm.SenderID)
}

func TestParseID(t *testing.T) {
	oid := primitive.NewObjectID()
	got, ok := ParseID(oid.Hex())
	assert.True(t, ok)
	assert.Equal(t, oid, got)

	_, ok = ParseID("not-an-id")
	assert.False(t, ok)
}

func TestStudyGroupCapacity(t *testing.T) {
	g := StudyGroup{Members: []string{"a", "b"}, MaxMembers: 2}
	assert.True(t, g.IsFull())

	g.MaxMembers = 0
	assert.False(t, g.IsFull())

	g.PendingRequests = []string{"c"}
	assert.True(t, g.IsPending("c"))
	assert.True(t, g.IsMember("a"))
	assert.False(t, g.IsMember("c"))
}
