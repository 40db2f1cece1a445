package review

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisResumeStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisResumeStore(client, time.Hour, nil), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "run-1", sampleSnapshot("run-1")))

	snap, err := store.Take(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", snap.RunID)
	assert.Equal(t, "gate-run-1", snap.GateID)
	assert.Equal(t, 84, snap.Triage.RiskScore)
	require.Len(t, snap.TopicSections, 1)
	assert.Equal(t, TopicClientIdentity, snap.TopicSections[0].TopicID)

	_, err = store.Take(ctx, "run-1")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestRedisStoreTakeUnknownRun(t *testing.T) {
	store, _ := newTestRedisStore(t)
	_, err := store.Take(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestRedisStoreAppliesTTL(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "run-1", sampleSnapshot("run-1")))

	mr.FastForward(2 * time.Hour)

	_, err := store.Take(ctx, "run-1")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestRedisStoreKeyNamespace(t *testing.T) {
	store, mr := newTestRedisStore(t)
	require.NoError(t, store.Save(context.Background(), "run-1", sampleSnapshot("run-1")))
	assert.True(t, mr.Exists("review:snapshot:run-1"))
}
