package service

import (
	"context"
	"sync"
	"time"

	"github.com/berlincodez/Campus-Skill-link/internal/apperr"
	"github.com/berlincodez/Campus-Skill-link/internal/model"
	"github.com/berlincodez/Campus-Skill-link/internal/repo"
	"go.uber.org/zap"
)

const activityWriteTimeout = 5 * time.Second

// ActivityLog records user activity without blocking the caller.
type ActivityLog interface {
	Record(userID, activityType string, metadata map[string]any)
}

type ActivityRecorder struct {
	repo   repo.ActivityRepository
	logger *zap.Logger
	now    func() time.Time
	wg     sync.WaitGroup
}

func NewActivityRecorder(repo repo.ActivityRepository, logger *zap.Logger) *ActivityRecorder {
	return &ActivityRecorder{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Record writes the activity in the background. Failures are logged and dropped.
func (r *ActivityRecorder) Record(userID, activityType string, metadata map[string]any) {
	activity := model.Activity{
		UserID:    userID,
		Type:      activityType,
		Metadata:  metadata,
		CreatedAt: r.now(),
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), activityWriteTimeout)
		defer cancel()

		if err := r.repo.Insert(ctx, activity); err != nil {
			r.logger.Warn("failed to record activity",
				zap.String("user_id", userID),
				zap.String("type", activityType),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until every in-flight write finished.
func (r *ActivityRecorder) Wait() {
	r.wg.Wait()
}

func (r *ActivityRecorder) List(ctx context.Context, userID string) ([]model.Activity, error) {
	if userID == "" {
		return nil, apperr.Validation("userId")
	}
	return r.repo.ListForUser(ctx, userID)
}
