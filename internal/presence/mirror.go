// Package presence mirrors online/offline transitions into Redis so other
// services can read presence without reaching into the hub's process. The
// in-memory registry stays authoritative; the mirror is a best-effort copy.
package presence

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	presenceKeyPrefix = "presence:"
	onlineSetKey      = "online_users"

	updateBufSize = 256
	writeTimeout  = 3 * time.Second
)

type entry struct {
	UserID   string    `json:"user_id"`
	Status   string    `json:"status"`
	LastSeen time.Time `json:"last_seen"`
}

type statusUpdate struct {
	userID string
	online bool
}

// presenceStore is the slice of Redis the mirror needs. Narrowed to an
// interface so the worker can be exercised without a live server.
type presenceStore interface {
	setOnline(ctx context.Context, userID string, data []byte, ttl time.Duration) error
	setOffline(ctx context.Context, userID string) error
}

type redisStore struct {
	rdb *redis.Client
}

func (s *redisStore) setOnline(ctx context.Context, userID string, data []byte, ttl time.Duration) error {
	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, presenceKeyPrefix+userID, data, ttl)
	pipe.SAdd(ctx, onlineSetKey, userID)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *redisStore) setOffline(ctx context.Context, userID string) error {
	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, presenceKeyPrefix+userID)
	pipe.SRem(ctx, onlineSetKey, userID)
	_, err := pipe.Exec(ctx)
	return err
}

// Mirror consumes registry status transitions and applies them to Redis.
// Updates are applied asynchronously so registry transitions never block on
// network I/O.
type Mirror struct {
	store   presenceStore
	logger  *zap.Logger
	ttl     time.Duration
	updates chan statusUpdate

	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

func NewMirror(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Mirror {
	return newMirror(&redisStore{rdb: rdb}, ttl, logger)
}

func newMirror(store presenceStore, ttl time.Duration, logger *zap.Logger) *Mirror {
	m := &Mirror{
		store:   store,
		logger:  logger,
		ttl:     ttl,
		updates: make(chan statusUpdate, updateBufSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	go m.run()
	return m
}

// OnStatusChange matches the registry's StatusListener hook. Updates arriving
// after Close, or while the buffer is full, are dropped rather than stalling
// a connect or disconnect. The updates channel is never closed, so a late
// transition racing Close can never panic the process.
func (m *Mirror) OnStatusChange(userID string, online bool) {
	select {
	case <-m.done:
		return
	default:
	}

	select {
	case m.updates <- statusUpdate{userID: userID, online: online}:
	default:
		m.logger.Warn("presence mirror buffer full, dropping update",
			zap.String("user_id", userID),
		)
	}
}

// Close stops the worker after draining pending updates. Safe to call more
// than once.
func (m *Mirror) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
	})
	<-m.stopped
}

func (m *Mirror) run() {
	defer close(m.stopped)

	for {
		select {
		case update := <-m.updates:
			m.apply(update)
		case <-m.done:
			// Drain whatever was buffered before shutdown.
			for {
				select {
				case update := <-m.updates:
					m.apply(update)
				default:
					return
				}
			}
		}
	}
}

func (m *Mirror) apply(update statusUpdate) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	var err error
	if update.online {
		var data []byte
		data, err = json.Marshal(entry{
			UserID:   update.userID,
			Status:   "online",
			LastSeen: time.Now().UTC(),
		})
		if err != nil {
			m.logger.Error("failed to marshal presence entry", zap.Error(err))
			return
		}
		err = m.store.setOnline(ctx, update.userID, data, m.ttl)
	} else {
		err = m.store.setOffline(ctx, update.userID)
	}

	if err != nil {
		m.logger.Warn("failed to mirror presence update",
			zap.Error(err),
			zap.String("user_id", update.userID),
		)
	}
}
