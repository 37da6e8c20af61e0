package cache

import (
	"context"
	"strings"
	"time"

	"github.com/kapu/viralscope-go/internal/constants"
	"github.com/kapu/viralscope-go/internal/domain"
)

// SnapshotStore keeps the latest analysis per user and platform in Redis.
type SnapshotStore struct {
	cache *CacheService
	ttl   time.Duration
}

func NewSnapshotStore(cache *CacheService, ttl time.Duration) *SnapshotStore {
	if ttl <= 0 {
		ttl = constants.CacheTTL.Snapshot
	}
	return &SnapshotStore{cache: cache, ttl: ttl}
}

func SnapshotKey(userID string, platform domain.Platform) string {
	return constants.RedisConfig.KeyPrefix + strings.TrimSpace(userID) + ":" + string(platform)
}

func (s *SnapshotStore) Upsert(ctx context.Context, record *domain.AnalysisRecord) error {
	return s.cache.Set(ctx, SnapshotKey(record.UserID, record.Platform), record, s.ttl)
}

// Latest returns nil, nil on a miss.
func (s *SnapshotStore) Latest(ctx context.Context, userID string, platform domain.Platform) (*domain.AnalysisRecord, error) {
	var record domain.AnalysisRecord
	found, err := s.cache.Get(ctx, SnapshotKey(userID, platform), &record)
	if err != nil || !found {
		return nil, err
	}
	return &record, nil
}

func (s *SnapshotStore) Delete(ctx context.Context, userID string, platform domain.Platform) error {
	return s.cache.Del(ctx, SnapshotKey(userID, platform))
}
