package poller

import (
	"context"
	"sync"

	"github.com/berlincodez/Campus-Skill-link/internal/apperr"
	"github.com/google/uuid"
)

// Session is the signed-in user of one client. It is created explicitly on login and passed
// to whatever needs the user id; Logout ends every loop bound to it.
type Session struct {
	ID     string
	UserID string

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

func NewSession(userID string) (*Session, error) {
	if userID == "" {
		return nil, apperr.Validation("userId")
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:     uuid.NewString(),
		UserID: userID,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

func (s *Session) Context() context.Context {
	return s.ctx
}

func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

func (s *Session) Logout() {
	s.once.Do(s.cancel)
}

func (s *Session) Active() bool {
	return s.ctx.Err() == nil
}
