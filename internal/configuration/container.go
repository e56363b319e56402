package configuration

import (
	"context"
	"fmt"
	"time"

	"github.com/fayyozbobokulov/workplace-connect-server/internal/auth"
	"github.com/fayyozbobokulov/workplace-connect-server/internal/db"
	"github.com/fayyozbobokulov/workplace-connect-server/internal/handler"
	"github.com/fayyozbobokulov/workplace-connect-server/internal/hub"
	"github.com/fayyozbobokulov/workplace-connect-server/internal/model"
	"github.com/fayyozbobokulov/workplace-connect-server/internal/presence"
	"github.com/fayyozbobokulov/workplace-connect-server/internal/repo"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Container struct {
	PresenceHandler handler.PresenceHandler
	Hub             *hub.Hub
	Config          Config
	Logger          *zap.Logger

	// private - for cleanup
	mongoClient *mongo.Database
	redisClient *redis.Client
	mirror      *presence.Mirror
}

func BuildContainer(configPath string) (*Container, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	con, err := db.OpenConnection(config.ChatDatabase.Uri, config.ChatDatabase.Database)
	if err != nil {
		return nil, err
	}

	messageRepo := repo.NewMessageRepository(
		db.NewRepository[model.Message](con, config.ChatDatabase.MessagesCollection), logger)
	userRepo := repo.NewUserRepository(
		db.NewRepository[model.User](con, config.ChatDatabase.UsersCollection))
	groupRepo := repo.NewGroupRepository(
		db.NewRepository[model.Group](con, config.ChatDatabase.GroupsCollection))

	authenticator := auth.NewAuthenticator(config.Auth.JwtSecret, userRepo, logger)

	h := hub.NewHub(authenticator, groupRepo, messageRepo, config.Server.AllowedOrigins, logger)

	container := &Container{
		PresenceHandler: handler.NewPresenceHandler(h, messageRepo),
		Hub:             h,
		Config:          *config,
		Logger:          logger,
		mongoClient:     con,
	}

	// The Redis presence mirror is optional; without it presence stays
	// purely in-process.
	if config.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})

		ttl := time.Duration(config.Redis.PresenceTTLSeconds) * time.Second
		if ttl <= 0 {
			ttl = 120 * time.Second
		}

		mirror := presence.NewMirror(rdb, ttl, logger)
		h.Registry().AddStatusListener(mirror.OnStatusChange)

		container.redisClient = rdb
		container.mirror = mirror
	}

	return container, nil
}

// Close gracefully shuts down all connections
func (c *Container) Close() error {
	// Stop the hub first (closes all WebSocket connections)
	if c.Hub != nil {
		c.Hub.Stop()
	}

	if c.mirror != nil {
		c.mirror.Close()
	}

	if c.redisClient != nil {
		_ = c.redisClient.Close()
	}

	// Sync logger
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}

	// Close MongoDB connection pool
	if c.mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.mongoClient.Client().Disconnect(ctx); err != nil {
			return fmt.Errorf("failed to close MongoDB connection: %w", err)
		}
	}

	return nil
}
