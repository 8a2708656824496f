package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Collections names the collections used by the messaging layer.
type Collections struct {
	Connections string
	Messages    string
	Users       string
	Posts       string
	StudyGroups string
	Activities  string
}

// EnsureIndexes creates the indexes the stores rely on. The partial unique indexes back the
// one-active-connection-per-(post, acceptor) and one-connection-per-group invariants.
func EnsureIndexes(ctx context.Context, database *mongo.Database, cols Collections, logger *zap.Logger) error {
	specs := map[string][]mongo.IndexModel{
		cols.Connections: {
			{
				Keys: bson.D{{Key: "postId", Value: 1}, {Key: "acceptedById", Value: 1}},
				Options: options.Index().
					SetName("uniq_active_direct").
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"isGroup": false, "status": "active"}),
			},
			{
				Keys: bson.D{{Key: "postId", Value: 1}},
				Options: options.Index().
					SetName("uniq_group_chat").
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"isGroup": true}),
			},
			{Keys: bson.D{{Key: "postOwnerId", Value: 1}}},
			{Keys: bson.D{{Key: "acceptedById", Value: 1}}},
			{Keys: bson.D{{Key: "members", Value: 1}}},
		},
		cols.Messages: {
			{Keys: bson.D{{Key: "connectionId", Value: 1}, {Key: "createdAt", Value: 1}}},
			{Keys: bson.D{{Key: "connectionId", Value: 1}, {Key: "read", Value: 1}, {Key: "senderId", Value: 1}}},
		},
		cols.Activities: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}

	for collection, models := range specs {
		names, err := database.Collection(collection).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
		logger.Debug("indexes ensured",
			zap.String("collection", collection),
			zap.Strings("indexes", names),
		)
	}

	return nil
}
