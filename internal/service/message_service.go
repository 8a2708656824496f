package service

import (
	"context"

	"github.com/berlincodez/Campus-Skill-link/internal/apperr"
	"github.com/berlincodez/Campus-Skill-link/internal/event"
	"github.com/berlincodez/Campus-Skill-link/internal/model"
	"github.com/berlincodez/Campus-Skill-link/internal/repo"
	"go.uber.org/zap"
)

type MessageService struct {
	guard    participantGuard
	messages repo.MessageRepository
	notifier Notifier
	logger   *zap.Logger
}

func NewMessageService(connections repo.ConnectionRepository, messages repo.MessageRepository, notifier Notifier, logger *zap.Logger) *MessageService {
	return &MessageService{
		guard:    participantGuard{connections: connections},
		messages: messages,
		notifier: notifier,
		logger:   logger,
	}
}

// Send appends a message to a thread the sender belongs to and notifies live subscribers.
func (s *MessageService) Send(ctx context.Context, in model.SendMessageInput) (*model.Message, error) {
	if err := apperr.ValidateStruct(in); err != nil {
		return nil, err
	}

	conn, err := s.guard.authorize(ctx, in.ConnectionID, in.SenderID)
	if err != nil {
		return nil, err
	}

	msg, err := s.messages.Append(ctx, conn.ID, in.SenderID, in.Text)
	if err != nil {
		return nil, err
	}

	publish(s.notifier, s.logger, event.EventMessageCreated, in.ConnectionID, msg)
	return msg, nil
}

// List returns the whole thread in ascending order. userID only scopes access.
func (s *MessageService) List(ctx context.Context, connectionID, userID string) ([]model.Message, error) {
	conn, err := s.guard.authorize(ctx, connectionID, userID)
	if err != nil {
		return nil, err
	}
	return s.messages.ListForConnection(ctx, conn.ID)
}

// Authorize checks that userID may subscribe to the thread.
func (s *MessageService) Authorize(ctx context.Context, connectionID, userID string) error {
	_, err := s.guard.authorize(ctx, connectionID, userID)
	return err
}
