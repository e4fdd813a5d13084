package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

// SnapshotRepository keeps the latest session snapshot per room and user and announces
// every saved snapshot on the room's channel.
type SnapshotRepository interface {
	Save(ctx context.Context, snapshot entity.Snapshot) error
	DeleteByID(ctx context.Context, roomID uint64, userID uuid.UUID) error
	Subscribe(ctx context.Context, roomID uint64) (<-chan entity.Snapshot, error)
}

type dbSnapshot struct {
	logger *slog.Logger
	client *redis.Client
	ttl    time.Duration
}

// SnapshotSync mirrors observed snapshots into a SnapshotRepository. A session whose
// channel closed for good is deleted instead of saved.
type SnapshotSync struct {
	repo SnapshotRepository
}

func NewSnapshotSync(repo SnapshotRepository) *SnapshotSync {
	return &SnapshotSync{repo: repo}
}

func (that *SnapshotSync) Observe(ctx context.Context, snapshot entity.Snapshot) error {
	if snapshot.Connection == entity.ClosedTerminal {
		return that.repo.DeleteByID(ctx, snapshot.RoomID, snapshot.UserID)
	}

	return that.repo.Save(ctx, snapshot)
}

// NewSnapshotRepository stores snapshots for ttl; zero keeps them until deleted.
func NewSnapshotRepository(logger *slog.Logger, client *redis.Client, ttl time.Duration) SnapshotRepository {
	return &dbSnapshot{
		logger: logger.With("component", "repository.snapshot"),
		client: client,
		ttl:    ttl,
	}
}

func snapshotKey(roomID uint64, userID uuid.UUID) string {
	return "session:" + strconv.FormatUint(roomID, 10) + ":" + userID.String()
}

func roomChannel(roomID uint64) string {
	return "room:" + strconv.FormatUint(roomID, 10) + ":session"
}

func (that *dbSnapshot) Save(ctx context.Context, snapshot entity.Snapshot) error {
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("could not marshal snapshot: %w", err)
	}

	pipe := that.client.TxPipeline()
	pipe.Set(ctx, snapshotKey(snapshot.RoomID, snapshot.UserID), snapshotJSON, that.ttl)
	pipe.Publish(ctx, roomChannel(snapshot.RoomID), snapshotJSON)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

func (that *dbSnapshot) DeleteByID(ctx context.Context, roomID uint64, userID uuid.UUID) error {
	if err := that.client.Del(ctx, snapshotKey(roomID, userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	return nil
}

// Subscribe streams snapshots published for the room until ctx is done.
func (that *dbSnapshot) Subscribe(ctx context.Context, roomID uint64) (<-chan entity.Snapshot, error) {
	log := that.logger.With("method", "Subscribe", "room_id", roomID)

	pubsub := that.client.Subscribe(ctx, roomChannel(roomID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan entity.Snapshot)

	go func() {
		defer close(out)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}

				var snapshot entity.Snapshot
				if err := json.Unmarshal([]byte(msg.Payload), &snapshot); err != nil {
					log.Warn("dropping malformed snapshot", "error", err)
					continue
				}

				select {
				case out <- snapshot:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
