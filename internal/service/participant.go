package service

import (
	"context"

	"github.com/berlincodez/Campus-Skill-link/internal/apperr"
	"github.com/berlincodez/Campus-Skill-link/internal/model"
	"github.com/berlincodez/Campus-Skill-link/internal/repo"
)

// participantGuard resolves a thread from a request id and checks that the caller belongs to it.
type participantGuard struct {
	connections repo.ConnectionRepository
}

func (p participantGuard) authorize(ctx context.Context, connectionID, userID string) (*model.Connection, error) {
	if connectionID == "" {
		return nil, apperr.Validation("connectionId")
	}
	if userID == "" {
		return nil, apperr.Validation("userId")
	}

	oid, ok := model.ParseID(connectionID)
	if !ok {
		return nil, apperr.Validationf("malformed connectionId %q", connectionID)
	}

	conn, err := p.connections.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if !conn.HasParticipant(userID) {
		return nil, apperr.Forbidden("user %s is not part of connection %s", userID, connectionID)
	}
	return conn, nil
}
