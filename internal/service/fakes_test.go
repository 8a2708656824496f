package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/berlincodez/Campus-Skill-link/internal/apperr"
	"github.com/berlincodez/Campus-Skill-link/internal/event"
	"github.com/berlincodez/Campus-Skill-link/internal/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore backs every repository interface with maps so services can be tested without
// a database. Err fields inject failures per operation.
type memStore struct {
	mu          sync.Mutex
	connections []model.Connection
	messages    []model.Message
	users       map[string]model.User
	posts       map[primitive.ObjectID]model.Post
	groups      map[primitive.ObjectID]model.StudyGroup
	activities  []model.Activity
	clock       time.Time

	listErr     error
	latestErr   error
	userErr     error
	postErr     error
	groupErr    error
	activityErr error
	markPostErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:  make(map[string]model.User),
		posts:  make(map[primitive.ObjectID]model.Post),
		groups: make(map[primitive.ObjectID]model.StudyGroup),
		clock:  time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

// connection repository

type memConnections struct{ *memStore }

func (r memConnections) CreateConnection(_ context.Context, postID primitive.ObjectID, ownerID, acceptedByID string) (*model.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.connections {
		if !c.IsGroup && c.PostID == postID && c.AcceptedByID != nil && *c.AcceptedByID == acceptedByID && c.Status == model.ConnectionStatusActive {
			return nil, apperr.Duplicate(postID.Hex(), acceptedByID)
		}
	}
	acceptor := acceptedByID
	c := model.Connection{
		ID:           primitive.NewObjectID(),
		PostID:       postID,
		PostOwnerID:  ownerID,
		AcceptedByID: &acceptor,
		Status:       model.ConnectionStatusActive,
		CreatedAt:    r.tick(),
	}
	r.connections = append(r.connections, c)
	return &c, nil
}

func (r memConnections) CreateGroupConnection(_ context.Context, groupID primitive.ObjectID, ownerID string, members []string) (*model.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.connections {
		if c.IsGroup && c.PostID == groupID {
			for _, id := range members {
				if !slices.Contains(c.Members, id) {
					r.connections[i].Members = append(r.connections[i].Members, id)
				}
			}
			out := r.connections[i]
			return &out, nil
		}
	}
	c := model.Connection{
		ID:          primitive.NewObjectID(),
		PostID:      groupID,
		PostOwnerID: ownerID,
		IsGroup:     true,
		Members:     slices.Compact(slices.Clone(members)),
		Status:      model.ConnectionStatusActive,
		CreatedAt:   r.tick(),
	}
	r.connections = append(r.connections, c)
	return &c, nil
}

func (r memConnections) AddMember(_ context.Context, id primitive.ObjectID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.connections {
		if c.ID == id && c.IsGroup {
			if !slices.Contains(c.Members, userID) {
				r.connections[i].Members = append(r.connections[i].Members, userID)
			}
			return nil
		}
	}
	return apperr.NotFound("group connection", id.Hex())
}

func (r memConnections) ListForUser(_ context.Context, userID string) ([]model.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []model.Connection
	for _, c := range r.connections {
		if c.HasParticipant(userID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r memConnections) UpdateStatus(_ context.Context, id primitive.ObjectID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.connections {
		if c.ID == id {
			r.connections[i].Status = status
			return nil
		}
	}
	return apperr.NotFound("connection", id.Hex())
}

func (r memConnections) GetByID(_ context.Context, id primitive.ObjectID) (*model.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.connections {
		if c.ID == id {
			out := c
			return &out, nil
		}
	}
	return nil, apperr.NotFound("connection", id.Hex())
}

// message repository

type memMessages struct{ *memStore }

func (r memMessages) Append(_ context.Context, connID primitive.ObjectID, senderID, text string) (*model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg := model.Message{
		ID:           primitive.NewObjectID(),
		ConnectionID: connID,
		SenderID:     senderID,
		Text:         text,
		CreatedAt:    r.tick(),
	}
	r.messages = append(r.messages, msg)
	return &msg, nil
}

func (r memMessages) ListForConnection(_ context.Context, connID primitive.ObjectID) ([]model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Message{}
	for _, m := range r.messages {
		if m.ConnectionID == connID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r memMessages) LatestForConnection(_ context.Context, connID primitive.ObjectID) (*model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.latestErr != nil {
		return nil, r.latestErr
	}
	var latest *model.Message
	for i := range r.messages {
		m := r.messages[i]
		if m.ConnectionID == connID && (latest == nil || !m.CreatedAt.Before(latest.CreatedAt)) {
			latest = &m
		}
	}
	return latest, nil
}

func (r memMessages) CountUnread(_ context.Context, connID primitive.ObjectID, excluding string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.messages {
		if m.ConnectionID == connID && !m.Read && m.SenderID != excluding {
			n++
		}
	}
	return n, nil
}

func (r memMessages) MarkRead(_ context.Context, connID primitive.ObjectID, reader string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i, m := range r.messages {
		if m.ConnectionID == connID && !m.Read && m.SenderID != reader {
			r.messages[i].Read = true
			n++
		}
	}
	return n, nil
}

// lookups

type memUsers struct{ *memStore }

func (r memUsers) GetUserByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.userErr != nil {
		return nil, r.userErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

type memPosts struct{ *memStore }

func (r memPosts) GetPostByID(_ context.Context, id primitive.ObjectID) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.postErr != nil {
		return nil, r.postErr
	}
	p, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r memPosts) MarkAccepted(_ context.Context, id primitive.ObjectID, acceptedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.markPostErr != nil {
		return r.markPostErr
	}
	p := r.posts[id]
	p.Status = model.PostStatusAccepted
	p.AcceptedBy = acceptedBy
	r.posts[id] = p
	return nil
}

type memGroups struct{ *memStore }

func (r memGroups) GetGroupByID(_ context.Context, id primitive.ObjectID) (*model.StudyGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.groupErr != nil {
		return nil, r.groupErr
	}
	g, ok := r.groups[id]
	if !ok {
		return nil, nil
	}
	g.Members = slices.Clone(g.Members)
	g.PendingRequests = slices.Clone(g.PendingRequests)
	return &g, nil
}

func (r memGroups) update(id primitive.ObjectID, fn func(g *model.StudyGroup)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[id]
	if !ok {
		return apperr.NotFound("study group", id.Hex())
	}
	fn(&g)
	r.groups[id] = g
	return nil
}

func (r memGroups) SetGroupChatID(_ context.Context, groupID, connID primitive.ObjectID) error {
	return r.update(groupID, func(g *model.StudyGroup) { g.ChatID = &connID })
}

func (r memGroups) AddPendingRequest(_ context.Context, groupID primitive.ObjectID, userID string) error {
	return r.update(groupID, func(g *model.StudyGroup) {
		if !slices.Contains(g.PendingRequests, userID) {
			g.PendingRequests = append(g.PendingRequests, userID)
		}
	})
}

func (r memGroups) ApproveRequest(_ context.Context, groupID primitive.ObjectID, userID string) error {
	return r.update(groupID, func(g *model.StudyGroup) {
		g.PendingRequests = slices.DeleteFunc(g.PendingRequests, func(id string) bool { return id == userID })
		if !slices.Contains(g.Members, userID) {
			g.Members = append(g.Members, userID)
		}
	})
}

func (r memGroups) RemovePendingRequest(_ context.Context, groupID primitive.ObjectID, userID string) error {
	return r.update(groupID, func(g *model.StudyGroup) {
		g.PendingRequests = slices.DeleteFunc(g.PendingRequests, func(id string) bool { return id == userID })
	})
}

type memActivities struct{ *memStore }

func (r memActivities) Insert(_ context.Context, a model.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.activityErr != nil {
		return r.activityErr
	}
	r.activities = append(r.activities, a)
	return nil
}

func (r memActivities) ListForUser(_ context.Context, userID string) ([]model.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Activity
	for _, a := range r.activities {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

// recordingNotifier captures published events.
type recordingNotifier struct {
	mu     sync.Mutex
	events []event.WsEvent
}

func (n *recordingNotifier) Publish(_ string, ev event.WsEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) names() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, ev := range n.events {
		out = append(out, ev.Event)
	}
	return out
}

// seeding helpers

func (m *memStore) addDirect(owner, acceptor string) model.Connection {
	m.mu.Lock()
	defer m.mu.Unlock()
	post := model.Post{ID: primitive.NewObjectID(), UserID: owner, Title: "Calculus tutoring"}
	m.posts[post.ID] = post
	a := acceptor
	c := model.Connection{
		ID:           primitive.NewObjectID(),
		PostID:       post.ID,
		PostOwnerID:  owner,
		AcceptedByID: &a,
		Status:       model.ConnectionStatusActive,
		CreatedAt:    m.tick(),
	}
	m.connections = append(m.connections, c)
	return c
}

func (m *memStore) addGroupThread(name, creator string, members ...string) (model.StudyGroup, model.Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := model.StudyGroup{ID: primitive.NewObjectID(), Name: name, CreatorID: creator, Members: append([]string{creator}, members...)}
	c := model.Connection{
		ID:          primitive.NewObjectID(),
		PostID:      g.ID,
		PostOwnerID: creator,
		IsGroup:     true,
		Members:     slices.Clone(g.Members),
		Status:      model.ConnectionStatusActive,
		CreatedAt:   m.tick(),
	}
	g.ChatID = &c.ID
	m.groups[g.ID] = g
	m.connections = append(m.connections, c)
	return g, c
}

func (m *memStore) addMessage(connID primitive.ObjectID, sender, text string, at time.Time) model.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg := model.Message{ID: primitive.NewObjectID(), ConnectionID: connID, SenderID: sender, Text: text, CreatedAt: at}
	m.messages = append(m.messages, msg)
	return msg
}

func (m *memStore) addUser(name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := model.User{ID: primitive.NewObjectID(), Name: name, Email: name + "@campus.edu"}
	m.users[u.ID.Hex()] = u
	return u.ID.Hex()
}
