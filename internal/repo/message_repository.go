package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fayyozbobokulov/workplace-connect-server/internal/db"
	"github.com/fayyozbobokulov/workplace-connect-server/internal/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	ErrEmptyBody       = errors.New("message body cannot be empty")
	ErrMissingTarget   = errors.New("message needs a receiver or a group")
	ErrBothTargets     = errors.New("message cannot target both a receiver and a group")
	ErrMessageNotFound = errors.New("message not found")
	ErrNotOwner        = errors.New("message can only be deleted by its sender")
)

const (
	defaultWriteTimeout = 5 * time.Second
	defaultReadTimeout  = 10 * time.Second

	maxRetries     = 3
	baseRetryDelay = 100 * time.Millisecond
	maxRetryDelay  = 2 * time.Second
)

type messageRepository struct {
	mongoRepo *db.Repository[model.Message]
	logger    *zap.Logger
}

type MessageRepository interface {
	CreateMessage(ctx context.Context, senderID, content string, receiverID, groupID *string) (*model.Message, error)
	MarkRead(ctx context.Context, userID string, messageIDs []string) error
	UnreadCounts(ctx context.Context, userID string) (map[string]int64, error)
	DeleteMessage(ctx context.Context, messageID, requesterID string) (*model.Message, error)
}

func NewMessageRepository(repo *db.Repository[model.Message], logger *zap.Logger) MessageRepository {
	return &messageRepository{
		mongoRepo: repo,
		logger:    logger,
	}
}

// -----------------------------------------------------------------------------
// CreateMessage
// -----------------------------------------------------------------------------

func (m *messageRepository) CreateMessage(ctx context.Context, senderID, content string, receiverID, groupID *string) (*model.Message, error) {
	if err := validateTarget(receiverID, groupID); err != nil {
		return nil, err
	}
	if content == "" {
		return nil, ErrEmptyBody
	}

	msg := &model.Message{
		MessageId:  uuid.New().String(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		GroupID:    groupID,
		Body:       content,
		ReadBy:     []string{senderID},
		CreatedAt:  time.Now().UTC(),
		Status:     model.MessageSentId,
	}

	ctx, cancel := m.ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if err := m.waitForRetry(ctx, attempt); err != nil {
				return nil, err
			}
		}

		_, err := m.mongoRepo.Create(ctx, *msg)
		if err == nil {
			m.logger.Info("message inserted",
				zap.String("message_id", msg.MessageId),
				zap.String("sender_id", senderID),
				zap.Int("attempt", attempt+1),
			)
			return msg, nil
		}

		lastErr = err
		if !m.isRetryableError(err) {
			break
		}

		m.logger.Warn("insert attempt failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", maxRetries),
		)
	}

	m.logger.Error("failed to insert message after all retries",
		zap.Error(lastErr),
		zap.String("sender_id", senderID),
	)

	return nil, fmt.Errorf("insert message failed: %w", lastErr)
}

// -----------------------------------------------------------------------------
// MarkRead
// -----------------------------------------------------------------------------

func (m *messageRepository) MarkRead(ctx context.Context, userID string, messageIDs []string) error {
	if len(messageIDs) == 0 {
		return nil
	}

	ctx, cancel := m.ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	filter := db.NewFilter().In("message_id", messageIDs).Build()
	update := bson.M{
		"$addToSet": bson.M{"read_by": userID},
		"$set":      bson.M{"status": model.MessageSeenId},
	}

	result, err := m.mongoRepo.UpdateMany(ctx, filter, update)
	if err != nil {
		m.logger.Error("failed to mark messages read",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return fmt.Errorf("mark read failed: %w", err)
	}

	m.logger.Debug("messages marked read",
		zap.String("user_id", userID),
		zap.Int64("matched", result.MatchedCount),
	)
	return nil
}

// -----------------------------------------------------------------------------
// UnreadCounts - unread direct messages per sender
// -----------------------------------------------------------------------------

func (m *messageRepository) UnreadCounts(ctx context.Context, userID string) (map[string]int64, error) {
	ctx, cancel := m.ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"receiver_id": userID,
			"read_by":     bson.M{"$ne": userID},
			"status":      bson.M{"$ne": model.MessageDeletedId},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$sender_id",
			"count": bson.M{"$sum": 1},
		}}},
	}

	rows, err := m.mongoRepo.Aggregate(ctx, pipeline)
	if err != nil {
		m.logger.Error("failed to aggregate unread counts",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("unread counts failed: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		sender, _ := row["_id"].(string)
		if sender == "" {
			continue
		}
		switch n := row["count"].(type) {
		case int32:
			counts[sender] = int64(n)
		case int64:
			counts[sender] = n
		}
	}
	return counts, nil
}

// -----------------------------------------------------------------------------
// DeleteMessage - soft delete, requester must be the sender
// -----------------------------------------------------------------------------

func (m *messageRepository) DeleteMessage(ctx context.Context, messageID, requesterID string) (*model.Message, error) {
	ctx, cancel := m.ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	filter := db.NewFilter().Eq("message_id", messageID).Ne("status", model.MessageDeletedId).Build()

	msg, err := m.mongoRepo.FindOne(ctx, filter)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("find message failed: %w", err)
	}

	if msg.SenderID != requesterID {
		return nil, ErrNotOwner
	}

	update := bson.M{"$set": bson.M{"status": model.MessageDeletedId}}
	if _, err := m.mongoRepo.UpdateOne(ctx, filter, update); err != nil {
		m.logger.Error("failed to delete message",
			zap.Error(err),
			zap.String("message_id", messageID),
		)
		return nil, fmt.Errorf("delete message failed: %w", err)
	}

	m.logger.Info("message deleted",
		zap.String("message_id", messageID),
		zap.String("requester_id", requesterID),
	)

	msg.Status = model.MessageDeletedId
	return msg, nil
}

// -----------------------------------------------------------------------------
// Private Helper Methods
// -----------------------------------------------------------------------------

func validateTarget(receiverID, groupID *string) error {
	switch {
	case receiverID == nil && groupID == nil:
		return ErrMissingTarget
	case receiverID != nil && groupID != nil:
		return ErrBothTargets
	}
	return nil
}

func (m *messageRepository) ensureTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hadDeadline := ctx.Deadline(); hadDeadline {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, timeout)
}

func (m *messageRepository) waitForRetry(ctx context.Context, attempt int) error {
	delay := time.Duration(1<<uint(attempt)) * baseRetryDelay
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("retry wait cancelled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

func (m *messageRepository) isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	return mongo.IsTimeout(err) || mongo.IsNetworkError(err)
}
