package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ActivityAcceptedPost = "accepted_post"
	ActivityJoinedGroup  = "joined_group"
)

type Activity struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    string             `json:"userId" bson:"userId"`
	Type      string             `json:"type" bson:"type"`
	Metadata  map[string]any     `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}
