package database

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/kapu/viralscope-go/internal/domain"
	"github.com/kapu/viralscope-go/pkg/errors"
	"go.uber.org/zap"
)

const storeName = "postgres"

const createAnalysesTable = `
CREATE TABLE IF NOT EXISTS profile_analyses (
	id           UUID PRIMARY KEY,
	user_id      TEXT NOT NULL,
	platform     TEXT NOT NULL,
	handle       TEXT NOT NULL,
	objective    TEXT NOT NULL DEFAULT '',
	score        INTEGER NOT NULL,
	is_synthetic BOOLEAN NOT NULL DEFAULT FALSE,
	profile      JSONB NOT NULL,
	score_result JSONB NOT NULL,
	generation   JSONB NOT NULL,
	metadata     JSONB NOT NULL,
	scrape_stage TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, platform)
)`

const upsertAnalysis = `
INSERT INTO profile_analyses (
	id, user_id, platform, handle, objective, score, is_synthetic,
	profile, score_result, generation, metadata, scrape_stage, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (user_id, platform) DO UPDATE SET
	id = EXCLUDED.id,
	handle = EXCLUDED.handle,
	objective = EXCLUDED.objective,
	score = EXCLUDED.score,
	is_synthetic = EXCLUDED.is_synthetic,
	profile = EXCLUDED.profile,
	score_result = EXCLUDED.score_result,
	generation = EXCLUDED.generation,
	metadata = EXCLUDED.metadata,
	scrape_stage = EXCLUDED.scrape_stage,
	created_at = EXCLUDED.created_at,
	updated_at = NOW()`

const selectLatestAnalysis = `
SELECT id, user_id, platform, objective, profile, score_result, generation, metadata, scrape_stage, created_at
FROM profile_analyses
WHERE user_id = $1 AND platform = $2`

// AnalysisRepository keeps the latest analysis per user and platform.
type AnalysisRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewAnalysisRepository(ps *PostgresService) *AnalysisRepository {
	return &AnalysisRepository{
		db:     ps.GetDB(),
		logger: ps.logger,
	}
}

func (r *AnalysisRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createAnalysesTable); err != nil {
		return errors.NewPersistenceError("failed to create profile_analyses", storeName, err)
	}
	return nil
}

func (r *AnalysisRepository) Upsert(ctx context.Context, record *domain.AnalysisRecord) error {
	columns, err := encodeColumns(record)
	if err != nil {
		return errors.NewPersistenceError("failed to encode analysis", storeName, err)
	}

	_, err = r.db.ExecContext(ctx, upsertAnalysis,
		record.ID,
		record.UserID,
		string(record.Platform),
		record.Profile.Handle,
		record.Objective,
		record.Score.Score,
		record.Profile.IsSynthetic,
		columns[0], columns[1], columns[2], columns[3],
		record.ScrapeStage,
		record.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert analysis",
			zap.String("user_id", record.UserID),
			zap.String("platform", string(record.Platform)),
			zap.Error(err),
		)
		return errors.NewPersistenceError("failed to upsert analysis", storeName, err)
	}
	return nil
}

// Latest returns nil, nil when the user has no analysis for platform.
func (r *AnalysisRepository) Latest(ctx context.Context, userID string, platform domain.Platform) (*domain.AnalysisRecord, error) {
	var (
		record                                 domain.AnalysisRecord
		platformStr                            string
		profile, scoreResult, gen, metadataRaw []byte
	)
	err := r.db.QueryRowContext(ctx, selectLatestAnalysis, userID, string(platform)).Scan(
		&record.ID,
		&record.UserID,
		&platformStr,
		&record.Objective,
		&profile,
		&scoreResult,
		&gen,
		&metadataRaw,
		&record.ScrapeStage,
		&record.CreatedAt,
	)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewPersistenceError("failed to load analysis", storeName, err)
	}

	record.Platform = domain.Platform(platformStr)
	targets := []struct {
		raw  []byte
		dest any
	}{
		{profile, &record.Profile},
		{scoreResult, &record.Score},
		{gen, &record.Generation},
		{metadataRaw, &record.Metadata},
	}
	for _, t := range targets {
		if err := json.Unmarshal(t.raw, t.dest); err != nil {
			return nil, errors.NewPersistenceError("failed to decode analysis", storeName, err)
		}
	}
	return &record, nil
}

func encodeColumns(record *domain.AnalysisRecord) ([4][]byte, error) {
	var out [4][]byte
	for i, v := range []any{record.Profile, record.Score, record.Generation, record.Metadata} {
		encoded, err := json.Marshal(v)
		if err != nil {
			return out, fmt.Errorf("column %d: %w", i, err)
		}
		out[i] = encoded
	}
	return out, nil
}
