package repo

import (
	"context"
	"fmt"

	"github.com/berlincodez/Campus-Skill-link/internal/db"
	"github.com/berlincodez/Campus-Skill-link/internal/model"
	"go.uber.org/zap"
)

type ActivityRepository interface {
	Insert(ctx context.Context, activity model.Activity) error
	ListForUser(ctx context.Context, userID string) ([]model.Activity, error)
}

type activityRepository struct {
	mongoRepo *db.Repository[model.Activity]
	logger    *zap.Logger
}

func NewActivityRepository(repo *db.Repository[model.Activity], logger *zap.Logger) ActivityRepository {
	return &activityRepository{
		mongoRepo: repo,
		logger:    logger,
	}
}

func (r *activityRepository) Insert(ctx context.Context, activity model.Activity) error {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	if _, err := r.mongoRepo.Create(ctx, activity); err != nil {
		return fmt.Errorf("insert activity failed: %w", translateTimeout(err))
	}
	return nil
}

func (r *activityRepository) ListForUser(ctx context.Context, userID string) ([]model.Activity, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	rows, err := r.mongoRepo.FindAll(ctx, db.NewFilter().Eq("userId", userID).Build(),
		db.SortField{Field: "createdAt", Desc: true},
	)
	if err != nil {
		return nil, fmt.Errorf("list activities failed: %w", translateTimeout(err))
	}
	return rows, nil
}
