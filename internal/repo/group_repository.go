package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/berlincodez/Campus-Skill-link/internal/apperr"
	"github.com/berlincodez/Campus-Skill-link/internal/db"
	"github.com/berlincodez/Campus-Skill-link/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// GroupRepository covers the study-group operations the chat layer needs.
type GroupRepository interface {
	// GetGroupByID returns nil, nil when the group does not exist.
	GetGroupByID(ctx context.Context, id primitive.ObjectID) (*model.StudyGroup, error)
	SetGroupChatID(ctx context.Context, groupID, connectionID primitive.ObjectID) error
	AddPendingRequest(ctx context.Context, groupID primitive.ObjectID, userID string) error
	ApproveRequest(ctx context.Context, groupID primitive.ObjectID, userID string) error
	RemovePendingRequest(ctx context.Context, groupID primitive.ObjectID, userID string) error
}

type groupRepository struct {
	mongoRepo *db.Repository[model.StudyGroup]
	logger    *zap.Logger
}

func NewGroupRepository(repo *db.Repository[model.StudyGroup], logger *zap.Logger) GroupRepository {
	return &groupRepository{
		mongoRepo: repo,
		logger:    logger,
	}
}

func (r *groupRepository) GetGroupByID(ctx context.Context, id primitive.ObjectID) (*model.StudyGroup, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	group, err := r.mongoRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get group failed: %w", translateTimeout(err))
	}
	return group, nil
}

func (r *groupRepository) SetGroupChatID(ctx context.Context, groupID, connectionID primitive.ObjectID) error {
	return r.apply(ctx, "set_chat_id", groupID, bson.M{"$set": bson.M{"chatId": connectionID}})
}

func (r *groupRepository) AddPendingRequest(ctx context.Context, groupID primitive.ObjectID, userID string) error {
	return r.apply(ctx, "add_pending", groupID, bson.M{"$addToSet": bson.M{"pendingRequests": userID}})
}

// ApproveRequest moves userID from the pending list into the member set in one update.
func (r *groupRepository) ApproveRequest(ctx context.Context, groupID primitive.ObjectID, userID string) error {
	return r.apply(ctx, "approve_request", groupID, bson.M{
		"$pull":     bson.M{"pendingRequests": userID},
		"$addToSet": bson.M{"members": userID},
	})
}

func (r *groupRepository) RemovePendingRequest(ctx context.Context, groupID primitive.ObjectID, userID string) error {
	return r.apply(ctx, "remove_pending", groupID, bson.M{"$pull": bson.M{"pendingRequests": userID}})
}

func (r *groupRepository) apply(ctx context.Context, op string, groupID primitive.ObjectID, update bson.M) error {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	result, err := r.mongoRepo.Apply(ctx, db.NewFilter().ID(groupID).Build(), update)
	if err != nil {
		r.logger.Error("group update failed",
			zap.String("operation", op),
			zap.String("group_id", groupID.Hex()),
			zap.Error(err),
		)
		return fmt.Errorf("%s failed: %w", op, translateTimeout(err))
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("study group", groupID.Hex())
	}

	r.logger.Info("group updated", zap.String("operation", op), zap.String("group_id", groupID.Hex()))
	return nil
}
