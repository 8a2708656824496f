package configuration

import (
	"context"
	"fmt"
	"time"

	"github.com/berlincodez/Campus-Skill-link/internal/db"
	"github.com/berlincodez/Campus-Skill-link/internal/handler"
	"github.com/berlincodez/Campus-Skill-link/internal/hub"
	"github.com/berlincodez/Campus-Skill-link/internal/model"
	"github.com/berlincodez/Campus-Skill-link/internal/repo"
	"github.com/berlincodez/Campus-Skill-link/internal/service"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Container struct {
	MessagingHandler  handler.MessagingHandler
	ConnectionHandler handler.ConnectionHandler
	GroupHandler      handler.GroupHandler
	ActivityHandler   handler.ActivityHandler
	Messages          *service.MessageService
	Hub               *hub.Hub
	Config            Config
	Logger            *zap.Logger

	// private - for cleanup
	mongoClient *mongo.Database
	activity    *service.ActivityRecorder
}

func BuildContainer(ctx context.Context, configPath string) (*Container, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := NewLogger(config.Log)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	mc := config.ChatDatabase
	con, err := db.OpenConnection(ctx, mc.Uri, mc.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}

	cols := collectionsOf(mc)
	if err := prepareDatabase(ctx, con, cols, logger); err != nil {
		return nil, err
	}

	connectionRepo := repo.NewConnectionRepository(db.NewRepository[model.Connection](con, cols.Connections), logger)
	messageRepo := repo.NewMessageRepository(db.NewRepository[model.Message](con, cols.Messages), logger)
	userRepo := repo.NewUserRepository(db.NewRepository[model.User](con, cols.Users), logger)
	postRepo := repo.NewPostRepository(db.NewRepository[model.Post](con, cols.Posts), logger)
	groupRepo := repo.NewGroupRepository(db.NewRepository[model.StudyGroup](con, cols.StudyGroups), logger)
	activityRepo := repo.NewActivityRepository(db.NewRepository[model.Activity](con, cols.Activities), logger)

	h := hub.NewHub(logger, config.Server.AllowedOrigins)
	activity := service.NewActivityRecorder(activityRepo, logger)

	aggregator := service.NewConversationAggregator(connectionRepo, messageRepo, userRepo, postRepo, groupRepo, logger)
	messages := service.NewMessageService(connectionRepo, messageRepo, h, logger)
	readState := service.NewReadStateTracker(connectionRepo, messageRepo, h, logger)
	connections := service.NewConnectionService(connectionRepo, postRepo, activity, logger)
	groups := service.NewGroupService(groupRepo, connectionRepo, activity, h, logger)

	return &Container{
		MessagingHandler:  handler.NewMessagingHandler(aggregator, messages, readState, logger),
		ConnectionHandler: handler.NewConnectionHandler(connections, logger),
		GroupHandler:      handler.NewGroupHandler(groups, logger),
		ActivityHandler:   handler.NewActivityHandler(activity, logger),
		Messages:          messages,
		Hub:               h,
		Config:            *config,
		Logger:            logger,
		mongoClient:       con,
		activity:          activity,
	}, nil
}

func collectionsOf(mc MongoConfig) db.Collections {
	return db.Collections{
		Connections: mc.ConnectionsCollection,
		Messages:    mc.MessagesCollection,
		Users:       mc.UsersCollection,
		Posts:       mc.PostsCollection,
		StudyGroups: mc.GroupsCollection,
		Activities:  mc.ActivitiesCollection,
	}
}

// prepareDatabase builds the indexes the repositories rely on. The client is released
// when that fails since no container will own it.
func prepareDatabase(ctx context.Context, con *mongo.Database, cols db.Collections, logger *zap.Logger) error {
	err := db.EnsureIndexes(ctx, con, cols, logger)
	if err == nil {
		return nil
	}

	dctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if derr := con.Client().Disconnect(dctx); derr != nil {
		logger.Warn("failed to release MongoDB client", zap.Error(derr))
	}
	return fmt.Errorf("ensure indexes: %w", err)
}

// Close gracefully shuts down all connections
func (c *Container) Close() error {
	// Stop the hub first (closes all WebSocket connections)
	if c.Hub != nil {
		c.Hub.Stop()
	}

	// drain fire-and-forget activity writes before the pool goes away
	if c.activity != nil {
		c.activity.Wait()
	}

	// Close MongoDB connection pool
	if c.mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.mongoClient.Client().Disconnect(ctx); err != nil {
			return fmt.Errorf("failed to close MongoDB connection: %w", err)
		}
	}

	// Sync logger
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}

	return nil
}
