package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PostStatusOpen      = "open"
	PostStatusAccepted  = "accepted"
	PostStatusCompleted = "completed"
)

// Post is an offer, need or mentorship listing. Only the fields the messaging layer reads
// are mapped.
type Post struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID     string             `json:"userId" bson:"userId"`
	Type       string             `json:"type" bson:"type"`
	Title      string             `json:"title" bson:"title"`
	Status     string             `json:"status,omitempty" bson:"status,omitempty"`
	AcceptedBy string             `json:"acceptedBy,omitempty" bson:"acceptedBy,omitempty"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}
