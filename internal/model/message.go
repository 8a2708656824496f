package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a single chat message. Messages are immutable once created except for the
// read flag, which only moves from false to true.
type Message struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	ConnectionID primitive.ObjectID `json:"connectionId" bson:"connectionId"`
	SenderID     string             `json:"senderId" bson:"senderId"`
	Text         string             `json:"text" bson:"text"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	Read         bool               `json:"read" bson:"read"`
}
