package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/fayyozbobokulov/workplace-connect-server/internal/db"
	"github.com/fayyozbobokulov/workplace-connect-server/internal/model"

	"go.mongodb.org/mongo-driver/mongo"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository is the identity lookup used by the handshake authenticator
// and for the sender display fields on outgoing envelopes.
type UserRepository interface {
	FindByUserID(ctx context.Context, userID string) (*model.User, error)
}

type userRepository struct {
	mongoRepo *db.Repository[model.User]
}

func NewUserRepository(repo *db.Repository[model.User]) UserRepository {
	return &userRepository{
		mongoRepo: repo,
	}
}

func (r *userRepository) FindByUserID(ctx context.Context, userID string) (*model.User, error) {
	filter := db.NewFilter().Eq("user_id", userID).Eq("is_active", true).Build()

	user, err := r.mongoRepo.FindOne(ctx, filter)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user failed: %w", err)
	}
	return user, nil
}
