package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/berlincodez/Campus-Skill-link/internal/db"
	"github.com/berlincodez/Campus-Skill-link/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// UserRepository is the read side of the user directory.
type UserRepository interface {
	// GetUserByID returns nil, nil when the user does not exist.
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

type userRepository struct {
	mongoRepo *db.Repository[model.User]
	logger    *zap.Logger
}

func NewUserRepository(repo *db.Repository[model.User], logger *zap.Logger) UserRepository {
	return &userRepository{
		mongoRepo: repo,
		logger:    logger,
	}
}

// publicProjection keeps credentials and private profile fields inside the store.
var publicProjection = bson.M{"name": 1, "email": 1, "major": 1, "department": 1, "createdAt": 1}

func (r *userRepository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	oid, ok := model.ParseID(id)
	if !ok {
		return nil, nil
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	user, err := r.mongoRepo.FindByID(ctx, oid, options.FindOne().SetProjection(publicProjection))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.Debug("user not found", zap.String("user_id", id))
			return nil, nil
		}
		return nil, fmt.Errorf("get user failed: %w", translateTimeout(err))
	}
	return user, nil
}
