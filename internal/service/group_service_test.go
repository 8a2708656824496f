package service

import (
	"context"
	"testing"

	"github.com/berlincodez/Campus-Skill-link/internal/apperr"
	"github.com/berlincodez/Campus-Skill-link/internal/event"
	"github.com/berlincodez/Campus-Skill-link/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newGroupService(store *memStore) (*GroupService, *recordingActivity, *recordingNotifier) {
	activity := &recordingActivity{}
	notifier := &recordingNotifier{}
	return NewGroupService(memGroups{store}, memConnections{store}, activity, notifier, zap.NewNop()), activity, notifier
}

func seedGroup(store *memStore, creator string, maxMembers int) model.StudyGroup {
	g := model.StudyGroup{ID: primitive.NewObjectID(), Name: "Linear Algebra", CreatorID: creator, Members: []string{creator}, MaxMembers: maxMembers}
	store.groups[g.ID] = g
	return g
}

func groupThreads(store *memStore, groupID primitive.ObjectID) []model.Connection {
	var out []model.Connection
	for _, c := range store.connections {
		if c.IsGroup && c.PostID == groupID {
			out = append(out, c)
		}
	}
	return out
}

func TestApproveCreatesSingleGroupChat(t *testing.T) {
	store := newMemStore()
	svc, activity, notifier := newGroupService(store)
	g := seedGroup(store, "creator", 0)
	ctx := context.Background()

	require.NoError(t, svc.RequestJoin(ctx, g.ID.Hex(), "u1"))
	chatID, err := svc.Approve(ctx, g.ID.Hex(), "u1", "creator")
	require.NoError(t, err)
	assert.NotEmpty(t, chatID)

	threads := groupThreads(store, g.ID)
	require.Len(t, threads, 1)
	assert.ElementsMatch(t, []string{"creator", "u1"}, threads[0].Members)
	require.NotNil(t, store.groups[g.ID].ChatID)
	assert.Equal(t, chatID, store.groups[g.ID].ChatID.Hex())

	require.NoError(t, svc.RequestJoin(ctx, g.ID.Hex(), "u2"))
	chatID2, err := svc.Approve(ctx, g.ID.Hex(), "u2", "creator")
	require.NoError(t, err)
	assert.Equal(t, chatID, chatID2)

	threads = groupThreads(store, g.ID)
	require.Len(t, threads, 1)
	assert.ElementsMatch(t, []string{"creator", "u1", "u2"}, threads[0].Members)

	assert.Equal(t, []string{model.ActivityJoinedGroup, model.ActivityJoinedGroup}, activity.types)
	assert.Equal(t, []string{event.EventMemberJoined, event.EventMemberJoined}, notifier.names())
}

func TestApproveRecreatesStaleChat(t *testing.T) {
	store := newMemStore()
	svc, _, _ := newGroupService(store)
	g := seedGroup(store, "creator", 0)
	stale := primitive.NewObjectID()
	g.ChatID = &stale
	g.PendingRequests = []string{"u1"}
	store.groups[g.ID] = g

	chatID, err := svc.Approve(context.Background(), g.ID.Hex(), "u1", "creator")
	require.NoError(t, err)
	assert.NotEqual(t, stale.Hex(), chatID)
	assert.Len(t, groupThreads(store, g.ID), 1)
}

func TestApproveRules(t *testing.T) {
	store := newMemStore()
	svc, _, _ := newGroupService(store)
	g := seedGroup(store, "creator", 2)
	ctx := context.Background()

	require.NoError(t, svc.RequestJoin(ctx, g.ID.Hex(), "u1"))

	_, err := svc.Approve(ctx, g.ID.Hex(), "u1", "someone")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.Approve(ctx, g.ID.Hex(), "stranger", "creator")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Approve(ctx, g.ID.Hex(), "u1", "creator")
	require.NoError(t, err)

	// capacity of two is now reached
	assert.ErrorIs(t, svc.RequestJoin(ctx, g.ID.Hex(), "u2"), apperr.ErrValidation)
	assert.ErrorIs(t, svc.RequestJoin(ctx, g.ID.Hex(), "u1"), apperr.ErrValidation)

	_, err = svc.Approve(ctx, primitive.NewObjectID().Hex(), "u1", "creator")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRequestJoinTwice(t *testing.T) {
	store := newMemStore()
	svc, _, _ := newGroupService(store)
	g := seedGroup(store, "creator", 0)

	require.NoError(t, svc.RequestJoin(context.Background(), g.ID.Hex(), "u1"))
	assert.ErrorIs(t, svc.RequestJoin(context.Background(), g.ID.Hex(), "u1"), apperr.ErrValidation)
}

func TestHandleDispatch(t *testing.T) {
	store := newMemStore()
	svc, _, _ := newGroupService(store)
	g := seedGroup(store, "creator", 0)
	ctx := context.Background()

	_, err := svc.Handle(ctx, g.ID.Hex(), model.GroupActionInput{Action: model.GroupActionJoin, UserID: "u1"})
	require.NoError(t, err)
	pending := store.groups[g.ID]
	assert.True(t, pending.IsPending("u1"))

	_, err = svc.Handle(ctx, g.ID.Hex(), model.GroupActionInput{Action: model.GroupActionReject, UserID: "u1", ApproverID: "creator"})
	require.NoError(t, err)
	pending = store.groups[g.ID]
	assert.False(t, pending.IsPending("u1"))
	assert.Empty(t, groupThreads(store, g.ID))

	_, err = svc.Handle(ctx, g.ID.Hex(), model.GroupActionInput{Action: "leave", UserID: "u1"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Handle(ctx, g.ID.Hex(), model.GroupActionInput{Action: model.GroupActionReject, UserID: "u1", ApproverID: "u9"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestUniqueByKeepsFirst(t *testing.T) {
	in := []model.Connection{{PostOwnerID: "a"}, {PostOwnerID: "b"}, {PostOwnerID: "a"}}
	out := UniqueBy(in, func(c model.Connection) string { return c.PostOwnerID })
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].PostOwnerID)
	assert.Equal(t, "b", out[1].PostOwnerID)
}
