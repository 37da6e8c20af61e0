package analysis

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kapu/viralscope-go/internal/domain"
	"github.com/kapu/viralscope-go/internal/service/gateway"
	"github.com/kapu/viralscope-go/internal/service/generation"
	"github.com/kapu/viralscope-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeScraper struct {
	outcome *gateway.ScrapeOutcome
	err     error

	mu   sync.Mutex
	jobs []gateway.ScrapeJob
}

func (f *fakeScraper) Scrape(_ context.Context, job gateway.ScrapeJob) (*gateway.ScrapeOutcome, error) {
	f.mu.Lock()
	f.jobs = append(f.jobs, job)
	f.mu.Unlock()
	return f.outcome, f.err
}

type fakeGenerator struct {
	outcome *gateway.GenerateOutcome
	err     error

	mu   sync.Mutex
	reqs []domain.GenerationRequest
}

func (f *fakeGenerator) Generate(_ context.Context, req domain.GenerationRequest) (*gateway.GenerateOutcome, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	return f.outcome, f.err
}

type fakeStore struct {
	err     error
	mu      sync.Mutex
	records []*domain.AnalysisRecord
}

func (f *fakeStore) Upsert(_ context.Context, record *domain.AnalysisRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return f.err
}

const instagramPayload = `[{"username":"natgeo","fullName":"Nat Geo","followersCount":15400,"postsCount":85,
	"latestPosts":[{"likesCount":600,"commentsCount":93}]}]`

func newService(scraper Scraper, generator Generator, store RecordStore) *Service {
	svc := NewService(scraper, generator, generation.NewAdapter("gemini-2.5-flash", nil), store, Options{
		DefaultObjective: "grow reach",
		BatchConcurrency: 2,
		MaxBatchSize:     3,
	}, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) }
	svc.newID = func() string { return "rec-1" }
	return svc
}

func okGenerator() *fakeGenerator {
	return &fakeGenerator{outcome: &gateway.GenerateOutcome{
		Text:    "```json\n{\"viralScore\":66,\"nextPost\":{\"format\":\"reel\"}}\n```",
		Model:   "gemini-2.5-flash",
		Stage:   gateway.StageSecondary,
		Channel: "gemini",
	}}
}

func TestAnalyzeFullChain(t *testing.T) {
	scraper := &fakeScraper{outcome: &gateway.ScrapeOutcome{Payload: []byte(instagramPayload), Stage: gateway.StagePrimary, Channel: "relay"}}
	generator := okGenerator()
	store := &fakeStore{}
	svc := newService(scraper, generator, store)

	record, err := svc.Analyze(context.Background(), domain.AnalysisRequest{
		UserID:     "user-1",
		Platform:   "IG",
		ProfileURL: "https://www.instagram.com/natgeo/",
	})
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.Equal(t, "rec-1", record.ID)
	assert.Equal(t, domain.PlatformInstagram, record.Platform)
	assert.Equal(t, "grow reach", record.Objective)
	assert.Equal(t, "natgeo", record.Profile.Handle)
	assert.EqualValues(t, 15400, record.Profile.Followers)
	assert.Equal(t, 4.5, record.Profile.EngagementRatePercent)
	assert.Equal(t, 65, record.Score.Score)
	assert.Equal(t, "primary", record.ScrapeStage)
	require.NotNil(t, record.Generation.Report)
	assert.Equal(t, 66, *record.Generation.Report.ViralScore)
	assert.Equal(t, "gemini", record.Metadata.Provider)
	assert.True(t, record.Metadata.UsedFallback)

	require.Len(t, scraper.jobs, 1)
	assert.Equal(t, "natgeo", scraper.jobs[0].Handle)
	require.Len(t, generator.reqs, 1)
	assert.Contains(t, generator.reqs[0].PromptText, "65/100")
	require.Len(t, store.records, 1)
	assert.Same(t, record, store.records[0])
}

func TestAnalyzeSyntheticWhenPayloadEmpty(t *testing.T) {
	scraper := &fakeScraper{outcome: &gateway.ScrapeOutcome{Payload: []byte(`[]`), Stage: gateway.StagePrimary, Channel: "relay"}}
	svc := newService(scraper, okGenerator(), nil)

	record, err := svc.Analyze(context.Background(), domain.AnalysisRequest{UserID: "u", Platform: "tiktok", ProfileURL: "@dancer"})
	require.NoError(t, err)
	assert.True(t, record.Profile.IsSynthetic)
	assert.Equal(t, "dancer", record.Profile.Handle)
	assert.Equal(t, "synthetic", record.ScrapeStage)
}

func TestAnalyzeGenerationFailureReturnsNoRecord(t *testing.T) {
	scraper := &fakeScraper{outcome: &gateway.ScrapeOutcome{Payload: gateway.SyntheticPayload(domain.PlatformTikTok, "x"), Stage: gateway.StageSynthetic}}
	generator := &fakeGenerator{
		outcome: &gateway.GenerateOutcome{Stage: gateway.StageFailed},
		err:     errors.NewProviderUnavailableError("generate", true, []string{"primary:relay"}, fmt.Errorf("down")),
	}
	store := &fakeStore{}
	svc := newService(scraper, generator, store)

	record, err := svc.Analyze(context.Background(), domain.AnalysisRequest{UserID: "u", Platform: "tiktok", ProfileURL: "x"})
	require.Error(t, err)
	assert.Nil(t, record)
	assert.True(t, errors.IsCode(err, errors.CodeGenerationUnavailable))
	assert.Empty(t, store.records)
}

func TestAnalyzePersistenceFailureIsDistinct(t *testing.T) {
	scraper := &fakeScraper{outcome: &gateway.ScrapeOutcome{Payload: []byte(instagramPayload), Stage: gateway.StagePrimary}}
	store := &fakeStore{err: fmt.Errorf("connection refused")}
	svc := newService(scraper, okGenerator(), store)

	record, err := svc.Analyze(context.Background(), domain.AnalysisRequest{UserID: "u", Platform: "instagram", ProfileURL: "natgeo"})
	require.Error(t, err)
	require.NotNil(t, record)
	assert.True(t, errors.IsCode(err, errors.CodePersistence))
	assert.False(t, errors.IsCode(err, errors.CodeGenerationUnavailable))
}

func TestAnalyzeKeepsFreeTextDiagnosis(t *testing.T) {
	scraper := &fakeScraper{outcome: &gateway.ScrapeOutcome{Payload: []byte(instagramPayload), Stage: gateway.StagePrimary}}
	generator := &fakeGenerator{outcome: &gateway.GenerateOutcome{Text: "Sorry, I can only answer in prose.", Stage: gateway.StagePrimary, Channel: "relay"}}
	svc := newService(scraper, generator, nil)

	record, err := svc.Analyze(context.Background(), domain.AnalysisRequest{UserID: "u", Platform: "instagram", ProfileURL: "natgeo"})
	require.NoError(t, err)
	assert.True(t, record.Generation.ParseFailed)
	assert.Equal(t, "Sorry, I can only answer in prose.", record.Generation.RawText)
	assert.False(t, record.Metadata.UsedFallback)
}

func TestAnalyzeValidation(t *testing.T) {
	svc := newService(&fakeScraper{}, okGenerator(), nil)

	tests := []domain.AnalysisRequest{
		{Platform: "instagram", ProfileURL: "natgeo"},
		{UserID: "u", Platform: "", ProfileURL: "natgeo"},
		{UserID: "u", Platform: "orkut", ProfileURL: "natgeo"},
		{UserID: "u", Platform: "instagram", ProfileURL: ""},
	}
	for _, req := range tests {
		_, err := svc.Analyze(context.Background(), req)
		assert.True(t, errors.IsCode(err, errors.CodeInvalidInput), "%+v", req)
	}
}

func TestAnalyzeCredentialErrorPropagates(t *testing.T) {
	scraper := &fakeScraper{err: errors.NewCredentialError("no scrape channel", "scrape")}
	svc := newService(scraper, okGenerator(), nil)

	_, err := svc.Analyze(context.Background(), domain.AnalysisRequest{UserID: "u", Platform: "kwai", ProfileURL: "x"})
	assert.True(t, errors.IsCode(err, errors.CodeCredentialMissing))
}

func TestSnapshotSkipsGeneration(t *testing.T) {
	scraper := &fakeScraper{outcome: &gateway.ScrapeOutcome{Payload: []byte(instagramPayload), Stage: gateway.StageSecondary}}
	generator := okGenerator()
	svc := newService(scraper, generator, nil)

	snap, err := svc.Snapshot(context.Background(), domain.PlatformInstagram, "natgeo")
	require.NoError(t, err)
	assert.Equal(t, 65, snap.Score.Score)
	assert.Equal(t, 40, snap.Breakdown.FollowerPoints)
	assert.Equal(t, "secondary", snap.ScrapeStage)
	assert.Empty(t, generator.reqs)
}

type countingGenerator struct {
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (c *countingGenerator) Generate(_ context.Context, _ domain.GenerationRequest) (*gateway.GenerateOutcome, error) {
	n := c.inFlight.Add(1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	c.inFlight.Add(-1)
	return &gateway.GenerateOutcome{Text: `{"viralScore":10}`, Stage: gateway.StagePrimary, Channel: "relay"}, nil
}

func TestAnalyzeBatchKeepsOrderAndBound(t *testing.T) {
	scraper := &fakeScraper{outcome: &gateway.ScrapeOutcome{Payload: []byte(instagramPayload), Stage: gateway.StagePrimary}}
	generator := &countingGenerator{}
	svc := newService(scraper, generator, nil)

	results, err := svc.AnalyzeBatch(context.Background(), []domain.AnalysisRequest{
		{UserID: "a", Platform: "instagram", ProfileURL: "natgeo"},
		{UserID: "b", Platform: "nope", ProfileURL: "natgeo"},
		{UserID: "c", Platform: "instagram", ProfileURL: "natgeo"},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Equal(t, "a", results[0].Record.UserID)
	assert.True(t, errors.IsCode(results[1].Err, errors.CodeInvalidInput))
	assert.Nil(t, results[1].Record)
	assert.Equal(t, "c", results[2].Record.UserID)
	assert.LessOrEqual(t, generator.peak.Load(), int32(2))
}

func TestAnalyzeBatchLimits(t *testing.T) {
	svc := newService(&fakeScraper{}, okGenerator(), nil)

	_, err := svc.AnalyzeBatch(context.Background(), nil)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidInput))

	_, err = svc.AnalyzeBatch(context.Background(), make([]domain.AnalysisRequest, 4))
	assert.True(t, errors.IsCode(err, errors.CodeInvalidInput))
}
