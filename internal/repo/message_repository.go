package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/berlincodez/Campus-Skill-link/internal/apperr"
	"github.com/berlincodez/Campus-Skill-link/internal/db"
	"github.com/berlincodez/Campus-Skill-link/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type messageRepository struct {
	mongoRepo *db.Repository[model.Message]
	logger    *zap.Logger
	now       func() time.Time
}

// MessageRepository persists chat messages scoped to a connection.
//
// Ordering within a thread is by createdAt; messages sharing a timestamp fall back to
// insertion order of their ObjectIDs, which callers must not rely on across processes.
type MessageRepository interface {
	Append(ctx context.Context, connectionID primitive.ObjectID, senderID, text string) (*model.Message, error)
	ListForConnection(ctx context.Context, connectionID primitive.ObjectID) ([]model.Message, error)
	LatestForConnection(ctx context.Context, connectionID primitive.ObjectID) (*model.Message, error)
	CountUnread(ctx context.Context, connectionID primitive.ObjectID, excludingSenderID string) (int64, error)
	MarkRead(ctx context.Context, connectionID primitive.ObjectID, readerID string) (int64, error)
}

func NewMessageRepository(repo *db.Repository[model.Message], logger *zap.Logger) MessageRepository {
	return &messageRepository{
		mongoRepo: repo,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// -----------------------------------------------------------------------------
// Append
// -----------------------------------------------------------------------------

func (m *messageRepository) Append(ctx context.Context, connectionID primitive.ObjectID, senderID, text string) (*model.Message, error) {
	switch {
	case connectionID.IsZero():
		return nil, apperr.Validation("connectionId")
	case senderID == "":
		return nil, apperr.Validation("senderId")
	case strings.TrimSpace(text) == "":
		return nil, apperr.Validation("text")
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	// the id is assigned up front so a retried insert that already landed is detected
	msg := model.Message{
		ID:           primitive.NewObjectID(),
		ConnectionID: connectionID,
		SenderID:     senderID,
		Text:         text,
		CreatedAt:    m.now(),
		Read:         false,
	}

	attempts := 0
	_, err := withRetry(ctx, m.logger, "append_message", func(ctx context.Context) (primitive.ObjectID, error) {
		attempts++
		id, err := m.mongoRepo.Create(ctx, msg)
		if err != nil && attempts > 1 && mongo.IsDuplicateKeyError(err) {
			return msg.ID, nil
		}
		return id, err
	})
	if err != nil {
		m.logger.Error("failed to insert message",
			zap.Error(err),
			zap.String("connection_id", connectionID.Hex()),
		)
		return nil, fmt.Errorf("insert message failed: %w", translateTimeout(err))
	}

	m.logger.Info("message inserted successfully",
		zap.String("message_id", msg.ID.Hex()),
		zap.String("connection_id", connectionID.Hex()),
		zap.Int("attempts", attempts),
	)
	return &msg, nil
}

// -----------------------------------------------------------------------------
// ListForConnection
// -----------------------------------------------------------------------------
func (m *messageRepository) ListForConnection(ctx context.Context, connectionID primitive.ObjectID) ([]model.Message, error) {
	if connectionID.IsZero() {
		return nil, apperr.Validation("connectionId")
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().Eq("connectionId", connectionID).Build()

	msgs, err := withRetry(ctx, m.logger, "list_messages", func(ctx context.Context) ([]model.Message, error) {
		return m.mongoRepo.FindAll(ctx, filter,
			db.SortField{Field: "createdAt"},
			db.SortField{Field: "_id"},
		)
	})
	if err != nil {
		return nil, m.handleReadError(err, connectionID)
	}

	m.logger.Debug("messages listed",
		zap.String("connection_id", connectionID.Hex()),
		zap.Int("count", len(msgs)),
	)
	return msgs, nil
}

// -----------------------------------------------------------------------------
// LatestForConnection
// -----------------------------------------------------------------------------
func (m *messageRepository) LatestForConnection(ctx context.Context, connectionID primitive.ObjectID) (*model.Message, error) {
	if connectionID.IsZero() {
		return nil, apperr.Validation("connectionId")
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().Eq("connectionId", connectionID).Build()

	msg, err := withRetry(ctx, m.logger, "latest_message", func(ctx context.Context) (*model.Message, error) {
		return m.mongoRepo.FindFirst(ctx, filter,
			db.SortField{Field: "createdAt", Desc: true},
			db.SortField{Field: "_id", Desc: true},
		)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, m.handleReadError(err, connectionID)
	}
	return msg, nil
}

// -----------------------------------------------------------------------------
// CountUnread
// -----------------------------------------------------------------------------
func (m *messageRepository) CountUnread(ctx context.Context, connectionID primitive.ObjectID, excludingSenderID string) (int64, error) {
	if connectionID.IsZero() {
		return 0, apperr.Validation("connectionId")
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := unreadFilter(connectionID, excludingSenderID)

	n, err := withRetry(ctx, m.logger, "count_unread", func(ctx context.Context) (int64, error) {
		return m.mongoRepo.Count(ctx, filter)
	})
	if err != nil {
		return 0, m.handleReadError(err, connectionID)
	}
	return n, nil
}

// -----------------------------------------------------------------------------
// MarkRead - idempotent, only flips unread messages authored by others
// -----------------------------------------------------------------------------
func (m *messageRepository) MarkRead(ctx context.Context, connectionID primitive.ObjectID, readerID string) (int64, error) {
	if connectionID.IsZero() {
		return 0, apperr.Validation("connectionId")
	}
	if readerID == "" {
		return 0, apperr.Validation("userId")
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	filter := unreadFilter(connectionID, readerID)

	result, err := withRetry(ctx, m.logger, "mark_read", func(ctx context.Context) (*mongo.UpdateResult, error) {
		return m.mongoRepo.UpdateMany(ctx, filter, bson.M{"read": true})
	})
	if err != nil {
		m.logger.Error("failed to mark messages read",
			zap.String("connection_id", connectionID.Hex()),
			zap.String("reader_id", readerID),
			zap.Error(err),
		)
		return 0, fmt.Errorf("mark read failed: %w", translateTimeout(err))
	}

	m.logger.Info("messages marked read",
		zap.String("connection_id", connectionID.Hex()),
		zap.String("reader_id", readerID),
		zap.Int64("modified", result.ModifiedCount),
	)
	return result.ModifiedCount, nil
}

// -----------------------------------------------------------------------------
// Private Helper Methods
// -----------------------------------------------------------------------------

func unreadFilter(connectionID primitive.ObjectID, excludingSenderID string) bson.M {
	return db.NewFilter().
		Eq("connectionId", connectionID).
		Eq("read", false).
		Ne("senderId", excludingSenderID).
		Build()
}

func (m *messageRepository) handleReadError(err error, connectionID primitive.ObjectID) error {
	if errors.Is(err, context.DeadlineExceeded) {
		m.logger.Error("read timeout", zap.String("connection_id", connectionID.Hex()))
		return fmt.Errorf("%w: %w", ErrOperationTimeout, err)
	}

	if errors.Is(err, context.Canceled) {
		m.logger.Debug("read cancelled", zap.String("connection_id", connectionID.Hex()))
		return err
	}

	m.logger.Error("read failed", zap.Error(err), zap.String("connection_id", connectionID.Hex()))
	return fmt.Errorf("read messages failed: %w", err)
}
