package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a user document in MongoDB. Only the public fields are ever decoded;
// the directory projects away credentials.
type User struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name       string             `json:"name" bson:"name"`
	Email      string             `json:"email" bson:"email"`
	Major      string             `json:"major,omitempty" bson:"major,omitempty"`
	Department string             `json:"department,omitempty" bson:"department,omitempty"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}

// PublicProfile is what other users may see about a participant.
type PublicProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) Profile() *PublicProfile {
	return &PublicProfile{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
	}
}
