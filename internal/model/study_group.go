package model

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type StudyGroup struct {
	ID              primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Name            string              `json:"name" bson:"name"`
	Description     string              `json:"description,omitempty" bson:"description,omitempty"`
	CreatorID       string              `json:"creatorId" bson:"creatorId"`
	Members         []string            `json:"members" bson:"members"`
	PendingRequests []string            `json:"pendingRequests,omitempty" bson:"pendingRequests,omitempty"`
	MaxMembers      int                 `json:"maxMembers" bson:"maxMembers"`
	ChatID          *primitive.ObjectID `json:"chatId,omitempty" bson:"chatId,omitempty"`
	Status          string              `json:"status,omitempty" bson:"status,omitempty"`
	CreatedAt       time.Time           `json:"createdAt" bson:"createdAt"`
}

func (g *StudyGroup) IsMember(userID string) bool {
	return slices.Contains(g.Members, userID)
}

func (g *StudyGroup) IsPending(userID string) bool {
	return slices.Contains(g.PendingRequests, userID)
}

// IsFull reports whether the group reached its capacity. A zero capacity means unlimited.
func (g *StudyGroup) IsFull() bool {
	return g.MaxMembers > 0 && len(g.Members) >= g.MaxMembers
}

func (g *StudyGroup) Summary() *GroupSummary {
	return &GroupSummary{ID: g.ID.Hex(), Name: g.Name}
}
