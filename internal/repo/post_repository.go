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

type PostRepository interface {
	// GetPostByID returns nil, nil when the post does not exist.
	GetPostByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error)
	MarkAccepted(ctx context.Context, id primitive.ObjectID, acceptedBy string) error
}

type postRepository struct {
	mongoRepo *db.Repository[model.Post]
	logger    *zap.Logger
}

func NewPostRepository(repo *db.Repository[model.Post], logger *zap.Logger) PostRepository {
	return &postRepository{
		mongoRepo: repo,
		logger:    logger,
	}
}

func (r *postRepository) GetPostByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	post, err := r.mongoRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get post failed: %w", translateTimeout(err))
	}
	return post, nil
}

func (r *postRepository) MarkAccepted(ctx context.Context, id primitive.ObjectID, acceptedBy string) error {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	result, err := r.mongoRepo.Update(ctx, db.NewFilter().ID(id).Build(), bson.M{
		"acceptedBy": acceptedBy,
		"status":     model.PostStatusAccepted,
	})
	if err != nil {
		return fmt.Errorf("mark post accepted failed: %w", translateTimeout(err))
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("post", id.Hex())
	}

	r.logger.Info("post accepted", zap.String("post_id", id.Hex()), zap.String("accepted_by", acceptedBy))
	return nil
}
