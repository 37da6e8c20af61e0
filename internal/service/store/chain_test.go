package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/kapu/viralscope-go/internal/domain"
	"github.com/kapu/viralscope-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memBackend struct {
	records  map[string]*domain.AnalysisRecord
	writeErr error
	readErr  error
	writes   int
}

func newMem() *memBackend {
	return &memBackend{records: map[string]*domain.AnalysisRecord{}}
}

func key(userID string, platform domain.Platform) string {
	return userID + "/" + string(platform)
}

func (m *memBackend) Upsert(_ context.Context, record *domain.AnalysisRecord) error {
	m.writes++
	if m.writeErr != nil {
		return m.writeErr
	}
	m.records[key(record.UserID, record.Platform)] = record
	return nil
}

func (m *memBackend) Latest(_ context.Context, userID string, platform domain.Platform) (*domain.AnalysisRecord, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.records[key(userID, platform)], nil
}

func record() *domain.AnalysisRecord {
	return &domain.AnalysisRecord{ID: "r1", UserID: "u1", Platform: domain.PlatformYouTube}
}

func TestUpsertMirrorsToReplicas(t *testing.T) {
	primary, replica := newMem(), newMem()
	chain := NewChain(primary, zap.NewNop(), replica)

	require.NoError(t, chain.Upsert(context.Background(), record()))
	assert.Len(t, primary.records, 1)
	assert.Len(t, replica.records, 1)
}

func TestReplicaFailureIsSwallowed(t *testing.T) {
	primary, replica := newMem(), newMem()
	replica.writeErr = fmt.Errorf("redis down")
	chain := NewChain(primary, zap.NewNop(), replica)

	assert.NoError(t, chain.Upsert(context.Background(), record()))
	assert.Len(t, primary.records, 1)
}

func TestPrimaryFailureIsPersistenceError(t *testing.T) {
	primary, replica := newMem(), newMem()
	primary.writeErr = fmt.Errorf("disk full")
	chain := NewChain(primary, zap.NewNop(), replica)

	err := chain.Upsert(context.Background(), record())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodePersistence))
	assert.Zero(t, replica.writes)
}

func TestLatestPrefersReplicaAndWarmsOnMiss(t *testing.T) {
	primary, replica := newMem(), newMem()
	chain := NewChain(primary, zap.NewNop(), replica)
	primary.records[key("u1", domain.PlatformYouTube)] = record()

	got, err := chain.Latest(context.Background(), "u1", domain.PlatformYouTube)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "r1", got.ID)
	assert.Equal(t, 1, replica.writes)

	cached := &domain.AnalysisRecord{ID: "cached", UserID: "u1", Platform: domain.PlatformYouTube}
	replica.records[key("u1", domain.PlatformYouTube)] = cached
	got, err = chain.Latest(context.Background(), "u1", domain.PlatformYouTube)
	require.NoError(t, err)
	assert.Equal(t, "cached", got.ID)
}

func TestLatestReplicaErrorFallsThrough(t *testing.T) {
	primary, replica := newMem(), newMem()
	replica.readErr = fmt.Errorf("timeout")
	chain := NewChain(primary, zap.NewNop(), replica)

	got, err := chain.Latest(context.Background(), "u1", domain.PlatformYouTube)
	require.NoError(t, err)
	assert.Nil(t, got)
}
