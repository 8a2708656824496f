package service

import (
	"github.com/berlincodez/Campus-Skill-link/internal/event"
	"go.uber.org/zap"
)

// Notifier pushes thread events to live subscribers. Delivery is best-effort; polling
// remains the source of truth.
type Notifier interface {
	Publish(connectionID string, ev event.WsEvent)
}

type NopNotifier struct{}

func (NopNotifier) Publish(string, event.WsEvent) {}

func publish(n Notifier, logger *zap.Logger, name, connectionID string, payload any) {
	if n == nil {
		return
	}
	ev, err := event.New(name, connectionID, payload)
	if err != nil {
		logger.Warn("failed to encode event",
			zap.String("event", name),
			zap.String("connection_id", connectionID),
			zap.Error(err),
		)
		return
	}
	n.Publish(connectionID, ev)
}
