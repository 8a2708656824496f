package service

import (
	"context"

	"github.com/berlincodez/Campus-Skill-link/internal/apperr"
	"github.com/berlincodez/Campus-Skill-link/internal/model"
	"github.com/berlincodez/Campus-Skill-link/internal/repo"
	"go.uber.org/zap"
)

// ConnectionService opens 1:1 threads when a user accepts a post.
type ConnectionService struct {
	connections repo.ConnectionRepository
	posts       repo.PostRepository
	activity    ActivityLog
	logger      *zap.Logger
}

func NewConnectionService(connections repo.ConnectionRepository, posts repo.PostRepository, activity ActivityLog, logger *zap.Logger) *ConnectionService {
	return &ConnectionService{
		connections: connections,
		posts:       posts,
		activity:    activity,
		logger:      logger,
	}
}

func (s *ConnectionService) AcceptPost(ctx context.Context, in model.AcceptPostInput) (*model.Connection, error) {
	if err := apperr.ValidateStruct(in); err != nil {
		return nil, err
	}

	postID, ok := model.ParseID(in.PostID)
	if !ok {
		return nil, apperr.Validationf("malformed postId %q", in.PostID)
	}

	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperr.NotFound("post", in.PostID)
	}
	if post.UserID == in.AcceptedByID {
		return nil, apperr.Validationf("cannot accept your own post")
	}

	conn, err := s.connections.CreateConnection(ctx, postID, post.UserID, in.AcceptedByID)
	if err != nil {
		return nil, err
	}

	// the thread exists at this point; a stale post status is repaired by the next accept
	if err := s.posts.MarkAccepted(ctx, postID, in.AcceptedByID); err != nil {
		s.logger.Warn("failed to mark post accepted",
			zap.String("post_id", in.PostID),
			zap.String("connection_id", conn.ID.Hex()),
			zap.Error(err),
		)
	}

	s.activity.Record(in.AcceptedByID, model.ActivityAcceptedPost, map[string]any{
		"postId":       in.PostID,
		"connectionId": conn.ID.Hex(),
		"title":        post.Title,
	})

	return conn, nil
}

func (s *ConnectionService) ListConnections(ctx context.Context, userID string) ([]model.Connection, error) {
	if userID == "" {
		return nil, apperr.Validation("userId")
	}
	return s.connections.ListForUser(ctx, userID)
}

func (s *ConnectionService) UpdateStatus(ctx context.Context, connectionID string, in model.UpdateStatusInput) error {
	if err := apperr.ValidateStruct(in); err != nil {
		return err
	}
	oid, ok := model.ParseID(connectionID)
	if !ok {
		return apperr.Validationf("malformed connectionId %q", connectionID)
	}
	return s.connections.UpdateStatus(ctx, oid, in.Status)
}
