package service

import (
	"context"
	"errors"
	"testing"

	"github.com/berlincodez/Campus-Skill-link/internal/apperr"
	"github.com/berlincodez/Campus-Skill-link/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// recordingActivity captures Record calls synchronously.
type recordingActivity struct {
	types []string
}

func (r *recordingActivity) Record(_ string, activityType string, _ map[string]any) {
	r.types = append(r.types, activityType)
}

func seedPost(store *memStore, owner string) primitive.ObjectID {
	p := model.Post{ID: primitive.NewObjectID(), UserID: owner, Title: "Guitar lessons", Status: model.PostStatusOpen}
	store.posts[p.ID] = p
	return p.ID
}

func TestAcceptPostCreatesConnection(t *testing.T) {
	store := newMemStore()
	activity := &recordingActivity{}
	svc := NewConnectionService(memConnections{store}, memPosts{store}, activity, zap.NewNop())
	postID := seedPost(store, "owner")

	conn, err := svc.AcceptPost(context.Background(), model.AcceptPostInput{PostID: postID.Hex(), AcceptedByID: "acceptor"})
	require.NoError(t, err)
	assert.Equal(t, "owner", conn.PostOwnerID)
	require.NotNil(t, conn.AcceptedByID)
	assert.Equal(t, "acceptor", *conn.AcceptedByID)
	assert.Equal(t, model.ConnectionStatusActive, conn.Status)
	assert.False(t, conn.IsGroup)

	assert.Equal(t, model.PostStatusAccepted, store.posts[postID].Status)
	assert.Equal(t, []string{model.ActivityAcceptedPost}, activity.types)
}

func TestAcceptPostTwiceIsDuplicate(t *testing.T) {
	store := newMemStore()
	svc := NewConnectionService(memConnections{store}, memPosts{store}, &recordingActivity{}, zap.NewNop())
	postID := seedPost(store, "owner")
	in := model.AcceptPostInput{PostID: postID.Hex(), AcceptedByID: "acceptor"}

	_, err := svc.AcceptPost(context.Background(), in)
	require.NoError(t, err)

	_, err = svc.AcceptPost(context.Background(), in)
	assert.ErrorIs(t, err, apperr.ErrDuplicateConnection)
	assert.Len(t, store.connections, 1)

	// another acceptor may still open their own thread
	_, err = svc.AcceptPost(context.Background(), model.AcceptPostInput{PostID: postID.Hex(), AcceptedByID: "other"})
	assert.NoError(t, err)
}

func TestAcceptPostAfterCompletion(t *testing.T) {
	store := newMemStore()
	svc := NewConnectionService(memConnections{store}, memPosts{store}, &recordingActivity{}, zap.NewNop())
	postID := seedPost(store, "owner")
	in := model.AcceptPostInput{PostID: postID.Hex(), AcceptedByID: "acceptor"}

	conn, err := svc.AcceptPost(context.Background(), in)
	require.NoError(t, err)
	require.NoError(t, svc.UpdateStatus(context.Background(), conn.ID.Hex(), model.UpdateStatusInput{Status: model.ConnectionStatusCompleted}))

	_, err = svc.AcceptPost(context.Background(), in)
	assert.NoError(t, err)
}

func TestAcceptPostValidation(t *testing.T) {
	store := newMemStore()
	svc := NewConnectionService(memConnections{store}, memPosts{store}, &recordingActivity{}, zap.NewNop())
	postID := seedPost(store, "owner")

	_, err := svc.AcceptPost(context.Background(), model.AcceptPostInput{PostID: postID.Hex(), AcceptedByID: "owner"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.AcceptPost(context.Background(), model.AcceptPostInput{PostID: "nope", AcceptedByID: "a"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.AcceptPost(context.Background(), model.AcceptPostInput{PostID: primitive.NewObjectID().Hex(), AcceptedByID: "a"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAcceptPostSurvivesPostUpdateFailure(t *testing.T) {
	store := newMemStore()
	store.markPostErr = errors.New("posts collection unavailable")
	svc := NewConnectionService(memConnections{store}, memPosts{store}, &recordingActivity{}, zap.NewNop())
	postID := seedPost(store, "owner")

	conn, err := svc.AcceptPost(context.Background(), model.AcceptPostInput{PostID: postID.Hex(), AcceptedByID: "acceptor"})
	require.NoError(t, err)
	assert.NotNil(t, conn)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	store := newMemStore()
	svc := NewConnectionService(memConnections{store}, memPosts{store}, &recordingActivity{}, zap.NewNop())
	conn := store.addDirect("owner", "acceptor")

	err := svc.UpdateStatus(context.Background(), conn.ID.Hex(), model.UpdateStatusInput{Status: "archived"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	err = svc.UpdateStatus(context.Background(), primitive.NewObjectID().Hex(), model.UpdateStatusInput{Status: "completed"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestActivityRecorderFailureIsSwallowed(t *testing.T) {
	store := newMemStore()
	store.activityErr = errors.New("activities collection unavailable")
	recorder := NewActivityRecorder(memActivities{store}, zap.NewNop())
	svc := NewConnectionService(memConnections{store}, memPosts{store}, recorder, zap.NewNop())
	postID := seedPost(store, "owner")

	_, err := svc.AcceptPost(context.Background(), model.AcceptPostInput{PostID: postID.Hex(), AcceptedByID: "acceptor"})
	require.NoError(t, err)

	recorder.Wait()
	assert.Empty(t, store.activities)
}

func TestActivityRecorderListsNewestWrites(t *testing.T) {
	store := newMemStore()
	recorder := NewActivityRecorder(memActivities{store}, zap.NewNop())

	recorder.Record("u1", model.ActivityJoinedGroup, map[string]any{"groupId": "g"})
	recorder.Wait()

	list, err := recorder.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.ActivityJoinedGroup, list[0].Type)

	_, err = recorder.List(context.Background(), "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
