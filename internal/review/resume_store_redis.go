package review

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const defaultSnapshotTTL = 72 * time.Hour

// RedisResumeStore keeps snapshots in Redis so paused runs survive a
// process restart. GETDEL gives the atomic take semantics the gate
// round-trip depends on.
type RedisResumeStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

func NewRedisResumeStore(client *redis.Client, ttl time.Duration, tracer trace.Tracer) *RedisResumeStore {
	if client == nil {
		panic("review: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	if tracer == nil {
		tracer = otel.Tracer("complyward.internal.review.resume")
	}
	return &RedisResumeStore{redis: client, ttl: ttl, tracer: tracer}
}

var _ ResumeStore = (*RedisResumeStore)(nil)

func snapshotKey(runID string) string {
	return "review:snapshot:" + runID
}

func (s *RedisResumeStore) Save(ctx context.Context, runID string, snap *Snapshot) error {
	ctx, span := s.tracer.Start(ctx, "review.save_snapshot")
	defer span.End()

	data, err := json.Marshal(snap)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("review: failed to marshal snapshot: %w", err)
	}
	if err := s.redis.Set(ctx, snapshotKey(runID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("review: failed to persist snapshot: %w", err)
	}
	return nil
}

func (s *RedisResumeStore) Take(ctx context.Context, runID string) (*Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "review.take_snapshot")
	defer span.End()

	data, err := s.redis.GetDel(ctx, snapshotKey(runID)).Bytes()
	if err != nil {
		span.RecordError(err)
		if err == redis.Nil {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("review: failed to take snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("review: failed to decode snapshot: %w", err)
	}
	return &snap, nil
}
