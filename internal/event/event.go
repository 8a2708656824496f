package event

import (
	"encoding/json"
	"time"
)

const (
	EventMessageCreated = "message_created"
	EventMessagesRead   = "messages_read"
	EventMemberJoined   = "member_joined"
)

// WsEvent is the envelope pushed to subscribers of a thread room.
type WsEvent struct {
	Event        string          `json:"event"`
	ConnectionID string          `json:"connectionId"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	Timestamp    int64           `json:"timestamp"`
}

// New marshals payload into an event envelope for the given thread.
func New(name, connectionID string, payload any) (WsEvent, error) {
	ev := WsEvent{
		Event:        name,
		ConnectionID: connectionID,
		Timestamp:    time.Now().UnixMilli(),
	}
	if payload == nil {
		return ev, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return WsEvent{}, err
	}
	ev.Payload = raw
	return ev, nil
}
