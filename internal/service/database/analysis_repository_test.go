package database

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/kapu/viralscope-go/internal/domain"
	"github.com/kapu/viralscope-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockRepo(t *testing.T) (*AnalysisRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAnalysisRepository(NewPostgresServiceWithDB(db, zap.NewNop())), mock
}

func sampleRecord() *domain.AnalysisRecord {
	score := 70
	return &domain.AnalysisRecord{
		ID:        "0b5c1d52-4f5e-4a4e-9a57-1f3d2d0c9e11",
		UserID:    "user-1",
		Platform:  domain.PlatformInstagram,
		Objective: "grow reach",
		Profile: domain.CanonicalProfile{
			Platform:  domain.PlatformInstagram,
			Handle:    "natgeo",
			Followers: 15400,
			SyncedAt:  time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
		},
		Score:       domain.ScoreResult{Score: 65, Insight: "Strong momentum"},
		Generation:  domain.GenerationResult{Report: &domain.StrategyReport{ViralScore: &score}},
		Metadata:    domain.GenerationMetadata{Stage: "primary", Provider: "relay"},
		ScrapeStage: "primary",
		CreatedAt:   time.Date(2026, 5, 1, 9, 0, 1, 0, time.UTC),
	}
}

func TestUpsertUsesConflictOnUserAndPlatform(t *testing.T) {
	repo, mock := newMockRepo(t)
	rec := sampleRecord()

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (user_id, platform) DO UPDATE")).
		WithArgs(rec.ID, "user-1", "instagram", "natgeo", "grow reach", 65, false,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			"primary", rec.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Upsert(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertFailureIsPersistenceError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO profile_analyses")).
		WillReturnError(fmt.Errorf("connection refused"))

	err := repo.Upsert(context.Background(), sampleRecord())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodePersistence))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestDecodesJSONColumns(t *testing.T) {
	repo, mock := newMockRepo(t)
	rec := sampleRecord()

	profile, _ := json.Marshal(rec.Profile)
	score, _ := json.Marshal(rec.Score)
	gen, _ := json.Marshal(rec.Generation)
	meta, _ := json.Marshal(rec.Metadata)

	rows := sqlmock.NewRows([]string{"id", "user_id", "platform", "objective", "profile", "score_result", "generation", "metadata", "scrape_stage", "created_at"}).
		AddRow(rec.ID, rec.UserID, "instagram", rec.Objective, profile, score, gen, meta, "primary", rec.CreatedAt)
	mock.ExpectQuery(regexp.QuoteMeta("FROM profile_analyses")).
		WithArgs("user-1", "instagram").
		WillReturnRows(rows)

	got, err := repo.Latest(context.Background(), "user-1", domain.PlatformInstagram)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestMissingReturnsNil(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM profile_analyses")).
		WithArgs("nobody", "tiktok").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	got, err := repo.Latest(context.Background(), "nobody", domain.PlatformTikTok)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEnsureSchema(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS profile_analyses")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
