package service

import (
	"context"
	"fmt"

	"github.com/berlincodez/Campus-Skill-link/internal/apperr"
	"github.com/berlincodez/Campus-Skill-link/internal/model"
	"github.com/berlincodez/Campus-Skill-link/internal/repo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultEnrichConcurrency = 8

// ConversationAggregator derives a user's inbox from connections, messages, users, posts
// and study groups.
type ConversationAggregator struct {
	connections repo.ConnectionRepository
	messages    repo.MessageRepository
	users       repo.UserRepository
	posts       repo.PostRepository
	groups      repo.GroupRepository
	logger      *zap.Logger
	concurrency int
}

func NewConversationAggregator(
	connections repo.ConnectionRepository,
	messages repo.MessageRepository,
	users repo.UserRepository,
	posts repo.PostRepository,
	groups repo.GroupRepository,
	logger *zap.Logger,
) *ConversationAggregator {
	return &ConversationAggregator{
		connections: connections,
		messages:    messages,
		users:       users,
		posts:       posts,
		groups:      groups,
		logger:      logger,
		concurrency: defaultEnrichConcurrency,
	}
}

// Conversations returns the inbox of userID ordered by last message, newest first.
//
// Profile, group and post lookups are optional: a failure clears that field and the
// conversation is still returned. Failing to list connections or to read the message
// store is structural and yields apperr.ErrAggregation.
func (a *ConversationAggregator) Conversations(ctx context.Context, userID string) ([]model.Conversation, error) {
	if userID == "" {
		return nil, apperr.Validation("userId")
	}

	conns, err := a.connections.ListForUser(ctx, userID)
	if err != nil {
		a.logger.Error("cannot list connections for inbox", zap.String("user_id", userID), zap.Error(err))
		return nil, apperr.Aggregation(err)
	}

	// the same thread can be reached as owner, acceptor and member
	conns = UniqueBy(conns, func(c model.Connection) primitive.ObjectID { return c.ID })

	out := make([]model.Conversation, len(conns))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i := range conns {
		g.Go(func() error {
			conv, err := a.build(gctx, &conns[i], userID)
			if err != nil {
				return err
			}
			out[i] = conv
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		a.logger.Error("inbox aggregation failed", zap.String("user_id", userID), zap.Error(err))
		return nil, apperr.Aggregation(err)
	}

	model.SortConversations(out)

	a.logger.Debug("inbox aggregated",
		zap.String("user_id", userID),
		zap.Int("conversations", len(out)),
	)
	return out, nil
}

func (a *ConversationAggregator) build(ctx context.Context, conn *model.Connection, requester string) (model.Conversation, error) {
	conv := model.Conversation{
		ConnectionID: conn.ID.Hex(),
		IsGroup:      conn.IsGroup,
		Status:       conn.Status,
	}

	if conn.IsGroup {
		conv.Group = a.resolveGroup(ctx, conn)
	} else {
		conv.OtherUser = a.resolveProfile(ctx, conn, conn.OtherParticipant(requester))
		conv.Post = a.resolvePost(ctx, conn)
	}

	latest, err := a.messages.LatestForConnection(ctx, conn.ID)
	if err != nil {
		return model.Conversation{}, fmt.Errorf("latest message of %s: %w", conv.ConnectionID, err)
	}
	conv.LastMessage = model.NewLastMessage(latest)

	unread, err := a.messages.CountUnread(ctx, conn.ID, requester)
	if err != nil {
		return model.Conversation{}, fmt.Errorf("unread count of %s: %w", conv.ConnectionID, err)
	}
	conv.UnreadCount = unread

	return conv, nil
}

func (a *ConversationAggregator) resolveGroup(ctx context.Context, conn *model.Connection) *model.GroupSummary {
	group, err := a.groups.GetGroupByID(ctx, conn.PostID)
	if err != nil {
		a.degraded("group", conn, err)
		return nil
	}
	if group == nil {
		a.degraded("group", conn, apperr.NotFound("study group", conn.PostID.Hex()))
		return nil
	}
	return group.Summary()
}

func (a *ConversationAggregator) resolveProfile(ctx context.Context, conn *model.Connection, otherID string) *model.PublicProfile {
	if otherID == "" {
		return nil
	}
	user, err := a.users.GetUserByID(ctx, otherID)
	if err != nil {
		a.degraded("user", conn, err)
		return nil
	}
	if user == nil {
		return nil
	}
	return user.Profile()
}

func (a *ConversationAggregator) resolvePost(ctx context.Context, conn *model.Connection) *model.PostSummary {
	post, err := a.posts.GetPostByID(ctx, conn.PostID)
	if err != nil {
		a.degraded("post", conn, err)
		return nil
	}
	if post == nil {
		return nil
	}
	return &model.PostSummary{ID: post.ID.Hex(), Title: post.Title}
}

func (a *ConversationAggregator) degraded(field string, conn *model.Connection, err error) {
	a.logger.Warn("conversation enrichment degraded",
		zap.String("field", field),
		zap.String("connection_id", conn.ID.Hex()),
		zap.Error(err),
	)
}
