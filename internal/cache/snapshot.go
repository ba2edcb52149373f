package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/JonnyWalker81/moodlens/backend/internal/metrics"
	"github.com/JonnyWalker81/moodlens/backend/internal/models"
)

// SnapshotKey identifies one computed window for one user. Version is the user's
// cache version from Version, read before the window's entries were loaded.
type SnapshotKey struct {
	UserID   string
	Start    time.Time
	End      time.Time
	Location string
	Version  int64
}

// SnapshotCache stores computed analytics snapshots. Every write for a user bumps
// that user's version, which orphans older snapshots until their TTL expires.
// A snapshot stored under a version that has since moved on is never read.
type SnapshotCache struct {
	client *Client
	ttl    time.Duration
}

// NewSnapshotCache creates a snapshot cache
func NewSnapshotCache(client *Client, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{client: client, ttl: ttl}
}

func versionKey(userID string) string {
	return keyPrefix + "snapshot_version:" + userID
}

// Version returns the user's current cache version
func (s *SnapshotCache) Version(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := s.client.withTimeout(ctx)
	defer cancel()

	v, err := s.client.rdb.Get(ctx, versionKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache read version: %w", err)
	}
	return v, nil
}

func snapshotKey(k SnapshotKey) string {
	return fmt.Sprintf("%ssnapshot:%s:v%d:%d:%d:%s",
		keyPrefix, k.UserID, k.Version, k.Start.UnixNano(), k.End.UnixNano(), k.Location)
}

// Get returns the snapshot stored under k, or ErrMiss
func (s *SnapshotCache) Get(ctx context.Context, k SnapshotKey) (*models.AnalyticsSnapshot, error) {
	data, err := s.client.getBytes(ctx, snapshotKey(k))
	if errors.Is(err, ErrMiss) {
		metrics.CacheMiss("snapshot")
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}

	var snap models.AnalyticsSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode cached snapshot: %w", err)
	}
	metrics.CacheHit("snapshot")
	return &snap, nil
}

// Set stores a snapshot under k. Writing under a stale version is harmless.
func (s *SnapshotCache) Set(ctx context.Context, k SnapshotKey, snap *models.AnalyticsSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return s.client.setBytes(ctx, snapshotKey(k), data, s.ttl)
}

// InvalidateUser makes every cached snapshot for userID unreachable
func (s *SnapshotCache) InvalidateUser(ctx context.Context, userID string) error {
	ctx, cancel := s.client.withTimeout(ctx)
	defer cancel()

	if err := s.client.rdb.Incr(ctx, versionKey(userID)).Err(); err != nil {
		return fmt.Errorf("cache invalidate %s: %w", userID, err)
	}
	return nil
}
