package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/berlincodez/Campus-Skill-link/internal/apperr"
	"github.com/berlincodez/Campus-Skill-link/internal/db"
	"github.com/berlincodez/Campus-Skill-link/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type connectionRepository struct {
	mongoRepo *db.Repository[model.Connection]
	logger    *zap.Logger
	now       func() time.Time
}

// ConnectionRepository persists conversation threads.
type ConnectionRepository interface {
	CreateConnection(ctx context.Context, postID primitive.ObjectID, postOwnerID, acceptedByID string) (*model.Connection, error)
	CreateGroupConnection(ctx context.Context, groupID primitive.ObjectID, ownerID string, initialMembers []string) (*model.Connection, error)
	AddMember(ctx context.Context, connectionID primitive.ObjectID, userID string) error
	ListForUser(ctx context.Context, userID string) ([]model.Connection, error)
	UpdateStatus(ctx context.Context, connectionID primitive.ObjectID, status string) error
	GetByID(ctx context.Context, connectionID primitive.ObjectID) (*model.Connection, error)
}

func NewConnectionRepository(repo *db.Repository[model.Connection], logger *zap.Logger) ConnectionRepository {
	return &connectionRepository{
		mongoRepo: repo,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// -----------------------------------------------------------------------------
// CreateConnection - one active 1:1 thread per (post, acceptor)
// -----------------------------------------------------------------------------
func (r *connectionRepository) CreateConnection(ctx context.Context, postID primitive.ObjectID, postOwnerID, acceptedByID string) (*model.Connection, error) {
	switch {
	case postID.IsZero():
		return nil, apperr.Validation("postId")
	case postOwnerID == "":
		return nil, apperr.Validation("postOwnerId")
	case acceptedByID == "":
		return nil, apperr.Validation("acceptedById")
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	existing := db.NewFilter().
		Eq("postId", postID).
		Eq("acceptedById", acceptedByID).
		Eq("isGroup", false).
		Eq("status", model.ConnectionStatusActive).
		Build()

	exists, err := r.mongoRepo.Exists(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("existence check failed: %w", translateTimeout(err))
	}
	if exists {
		return nil, apperr.Duplicate(postID.Hex(), acceptedByID)
	}

	acceptor := acceptedByID
	conn := model.Connection{
		ID:           primitive.NewObjectID(),
		PostID:       postID,
		PostOwnerID:  postOwnerID,
		AcceptedByID: &acceptor,
		IsGroup:      false,
		Status:       model.ConnectionStatusActive,
		CreatedAt:    r.now(),
	}

	if _, err := r.mongoRepo.Create(ctx, conn); err != nil {
		// the partial unique index closes the race between the check and the insert
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Duplicate(postID.Hex(), acceptedByID)
		}
		r.logger.Error("failed to insert connection",
			zap.String("post_id", postID.Hex()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("insert connection failed: %w", translateTimeout(err))
	}

	r.logger.Info("connection created",
		zap.String("connection_id", conn.ID.Hex()),
		zap.String("post_id", postID.Hex()),
		zap.String("post_owner_id", postOwnerID),
		zap.String("accepted_by_id", acceptedByID),
	)
	return &conn, nil
}

// -----------------------------------------------------------------------------
// CreateGroupConnection - upsert keyed by group id, members merged as a set
// -----------------------------------------------------------------------------
func (r *connectionRepository) CreateGroupConnection(ctx context.Context, groupID primitive.ObjectID, ownerID string, initialMembers []string) (*model.Connection, error) {
	if groupID.IsZero() {
		return nil, apperr.Validation("groupId")
	}
	if ownerID == "" {
		return nil, apperr.Validation("ownerId")
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	members := uniqueNonEmpty(initialMembers)
	filter := db.NewFilter().Eq("postId", groupID).Eq("isGroup", true).Build()
	update := bson.M{
		"$setOnInsert": bson.M{
			"postOwnerId":  ownerID,
			"acceptedById": nil,
			"status":       model.ConnectionStatusActive,
			"createdAt":    r.now(),
		},
		"$addToSet": bson.M{"members": bson.M{"$each": members}},
	}

	conn, err := r.mongoRepo.Upsert(ctx, filter, update)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		// a concurrent upsert won; the second attempt matches its document
		conn, err = r.mongoRepo.Upsert(ctx, filter, update)
	}
	if err != nil {
		r.logger.Error("failed to upsert group connection",
			zap.String("group_id", groupID.Hex()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("create group connection failed: %w", translateTimeout(err))
	}

	r.logger.Info("group connection ensured",
		zap.String("connection_id", conn.ID.Hex()),
		zap.String("group_id", groupID.Hex()),
		zap.Int("members", len(conn.Members)),
	)
	return conn, nil
}

// -----------------------------------------------------------------------------
// AddMember
// -----------------------------------------------------------------------------
func (r *connectionRepository) AddMember(ctx context.Context, connectionID primitive.ObjectID, userID string) error {
	if connectionID.IsZero() {
		return apperr.Validation("connectionId")
	}
	if userID == "" {
		return apperr.Validation("userId")
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	filter := db.NewFilter().ID(connectionID).Eq("isGroup", true).Build()
	result, err := withRetry(ctx, r.logger, "add_member", func(ctx context.Context) (*mongo.UpdateResult, error) {
		return r.mongoRepo.Apply(ctx, filter, bson.M{"$addToSet": bson.M{"members": userID}})
	})
	if err != nil {
		return fmt.Errorf("add member failed: %w", translateTimeout(err))
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("group connection", connectionID.Hex())
	}

	r.logger.Info("group member added",
		zap.String("connection_id", connectionID.Hex()),
		zap.String("user_id", userID),
		zap.Bool("changed", result.ModifiedCount > 0),
	)
	return nil
}

// -----------------------------------------------------------------------------
// ListForUser - owner, acceptor or group member
// -----------------------------------------------------------------------------
func (r *connectionRepository) ListForUser(ctx context.Context, userID string) ([]model.Connection, error) {
	if userID == "" {
		return nil, apperr.Validation("userId")
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().Or(
		bson.M{"postOwnerId": userID},
		bson.M{"acceptedById": userID},
		bson.M{"members": userID},
	).Build()

	conns, err := withRetry(ctx, r.logger, "list_connections", func(ctx context.Context) ([]model.Connection, error) {
		return r.mongoRepo.FindAll(ctx, filter, db.SortField{Field: "createdAt", Desc: true})
	})
	if err != nil {
		r.logger.Error("failed to list connections", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("list connections failed: %w", translateTimeout(err))
	}

	r.logger.Debug("connections listed",
		zap.String("user_id", userID),
		zap.Int("count", len(conns)),
	)
	return conns, nil
}

// -----------------------------------------------------------------------------
// UpdateStatus
// -----------------------------------------------------------------------------

// UpdateStatus moves a thread between active and completed in either direction.
// Reopening a completed 1:1 thread fails with ErrDuplicateConnection when the same
// acceptor already holds another active thread on the post.
func (r *connectionRepository) UpdateStatus(ctx context.Context, connectionID primitive.ObjectID, status string) error {
	if connectionID.IsZero() {
		return apperr.Validation("connectionId")
	}
	if !model.ValidConnectionStatus(status) {
		return apperr.Validationf("invalid status %q", status)
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	result, err := r.mongoRepo.Update(ctx, db.NewFilter().ID(connectionID).Build(), bson.M{"status": status})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: another active connection exists for this post", apperr.ErrDuplicateConnection)
		}
		return fmt.Errorf("update status failed: %w", translateTimeout(err))
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("connection", connectionID.Hex())
	}

	r.logger.Info("connection status updated",
		zap.String("connection_id", connectionID.Hex()),
		zap.String("status", status),
	)
	return nil
}

func (r *connectionRepository) GetByID(ctx context.Context, connectionID primitive.ObjectID) (*model.Connection, error) {
	if connectionID.IsZero() {
		return nil, apperr.Validation("connectionId")
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	conn, err := withRetry(ctx, r.logger, "get_connection", func(ctx context.Context) (*model.Connection, error) {
		return r.mongoRepo.FindByID(ctx, connectionID)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("connection", connectionID.Hex())
		}
		return nil, fmt.Errorf("get connection failed: %w", translateTimeout(err))
	}
	return conn, nil
}

func uniqueNonEmpty(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
