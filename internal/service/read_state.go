package service

import (
	"context"
	"time"

	"github.com/berlincodez/Campus-Skill-link/internal/apperr"
	"github.com/berlincodez/Campus-Skill-link/internal/event"
	"github.com/berlincodez/Campus-Skill-link/internal/model"
	"github.com/berlincodez/Campus-Skill-link/internal/repo"
	"go.uber.org/zap"
)

// ReadStateTracker flips read flags of a thread for one reader. Once MarkThreadRead returns,
// the next unread count computed for that reader on that thread observes the update.
type ReadStateTracker struct {
	guard    participantGuard
	messages repo.MessageRepository
	notifier Notifier
	logger   *zap.Logger
}

func NewReadStateTracker(connections repo.ConnectionRepository, messages repo.MessageRepository, notifier Notifier, logger *zap.Logger) *ReadStateTracker {
	return &ReadStateTracker{
		guard:    participantGuard{connections: connections},
		messages: messages,
		notifier: notifier,
		logger:   logger,
	}
}

func (t *ReadStateTracker) MarkThreadRead(ctx context.Context, in model.MarkReadInput) (model.MarkReadResult, error) {
	if err := apperr.ValidateStruct(in); err != nil {
		return model.MarkReadResult{}, err
	}

	conn, err := t.guard.authorize(ctx, in.ConnectionID, in.UserID)
	if err != nil {
		return model.MarkReadResult{}, err
	}

	modified, err := t.messages.MarkRead(ctx, conn.ID, in.UserID)
	if err != nil {
		return model.MarkReadResult{}, err
	}

	if modified > 0 {
		publish(t.notifier, t.logger, event.EventMessagesRead, in.ConnectionID, model.MessagesRead{
			ConnectionID:  in.ConnectionID,
			ReadBy:        in.UserID,
			ModifiedCount: modified,
			ReadAt:        time.Now().UTC().Format(time.RFC3339),
		})
	}

	return model.MarkReadResult{ModifiedCount: modified}, nil
}
