package model

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ConnectionStatusActive    = "active"
	ConnectionStatusCompleted = "completed"
)

// Connection is a persisted conversation thread. For 1:1 threads PostID references the
// originating post; for group threads it references the study group.
type Connection struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	PostID       primitive.ObjectID `json:"postId" bson:"postId"`
	PostOwnerID  string             `json:"postOwnerId" bson:"postOwnerId"`
	AcceptedByID *string            `json:"acceptedById" bson:"acceptedById"`
	IsGroup      bool               `json:"isGroup" bson:"isGroup"`
	Members      []string           `json:"members,omitempty" bson:"members,omitempty"`
	Status       string             `json:"status" bson:"status"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
}

// HasParticipant reports whether userID can read and write this thread.
func (c *Connection) HasParticipant(userID string) bool {
	if userID == "" {
		return false
	}
	if c.PostOwnerID == userID {
		return true
	}
	if c.AcceptedByID != nil && *c.AcceptedByID == userID {
		return true
	}
	return c.IsGroup && slices.Contains(c.Members, userID)
}

// OtherParticipant returns the counterpart of requester in a 1:1 thread.
func (c *Connection) OtherParticipant(requester string) string {
	if c.PostOwnerID == requester {
		if c.AcceptedByID == nil {
			return ""
		}
		return *c.AcceptedByID
	}
	return c.PostOwnerID
}

func ValidConnectionStatus(status string) bool {
	return status == ConnectionStatusActive || status == ConnectionStatusCompleted
}
