// Package analysis wires one request through scrape, normalization, scoring,
// generation and persistence. Each request runs its own chain and shares no
// mutable state with other requests.
package analysis

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kapu/viralscope-go/internal/constants"
	"github.com/kapu/viralscope-go/internal/domain"
	"github.com/kapu/viralscope-go/internal/service/gateway"
	"github.com/kapu/viralscope-go/internal/service/generation"
	"github.com/kapu/viralscope-go/internal/service/normalizer"
	"github.com/kapu/viralscope-go/internal/service/scoring"
	"github.com/kapu/viralscope-go/internal/util"
	"github.com/kapu/viralscope-go/pkg/errors"
	"go.uber.org/zap"
)

type Scraper interface {
	Scrape(ctx context.Context, job gateway.ScrapeJob) (*gateway.ScrapeOutcome, error)
}

type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (*gateway.GenerateOutcome, error)
}

// RecordStore is the external persistence collaborator.
type RecordStore interface {
	Upsert(ctx context.Context, record *domain.AnalysisRecord) error
}

type Options struct {
	DefaultObjective string
	BatchConcurrency int
	MaxBatchSize     int
}

type Service struct {
	scraper   Scraper
	generator Generator
	adapter   *generation.Adapter
	store     RecordStore
	opts      Options
	now       func() time.Time
	newID     func() string
	logger    *zap.Logger
}

// NewService builds the pipeline. store may be nil, in which case records are
// returned but not persisted.
func NewService(scraper Scraper, generator Generator, adapter *generation.Adapter, store RecordStore, opts Options, logger *zap.Logger) *Service {
	if opts.BatchConcurrency < 1 {
		opts.BatchConcurrency = 1
	}
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = constants.AnalysisLimits.MaxBatchSize
	}
	return &Service{
		scraper:   scraper,
		generator: generator,
		adapter:   adapter,
		store:     store,
		opts:      opts,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
		logger:    util.OrNop(logger),
	}
}

// Analyze runs the full chain. A generation failure returns no record. A
// persistence failure returns the record together with a PersistenceError.
func (s *Service) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisRecord, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, errors.NewValidationError("userId is required", "userId", req.UserID)
	}
	platform, err := domain.ParsePlatform(string(req.Platform))
	if err != nil {
		return nil, err
	}
	objective := util.FirstNonEmpty(req.Objective, s.opts.DefaultObjective)

	snap, err := s.Snapshot(ctx, platform, req.ProfileURL)
	if err != nil {
		return nil, err
	}

	genReq, err := s.adapter.BuildRequest(generation.DiagnosisContext{
		Profile:   snap.Profile,
		Score:     snap.Score,
		Objective: objective,
	})
	if err != nil {
		return nil, err
	}

	outcome, err := s.generator.Generate(ctx, genReq)
	if err != nil {
		return nil, fmt.Errorf("analyze %s/%s: %w", platform, snap.Profile.Handle, err)
	}

	result := generation.ParseResponse(outcome.Text)
	if result.ParseFailed {
		s.logger.Warn("Diagnosis response was not valid JSON",
			zap.String("channel", outcome.Channel),
			zap.String("preview", util.TruncateString(result.RawText, 120)),
		)
	}

	record := &domain.AnalysisRecord{
		ID:         s.newID(),
		UserID:     strings.TrimSpace(req.UserID),
		Platform:   platform,
		Objective:  objective,
		Profile:    snap.Profile,
		Score:      snap.Score,
		Generation: result,
		Metadata: domain.GenerationMetadata{
			Stage:        string(outcome.Stage),
			Provider:     outcome.Channel,
			Model:        outcome.Model,
			UsedFallback: outcome.Stage == gateway.StageSecondary,
		},
		ScrapeStage: snap.ScrapeStage,
		CreatedAt:   s.now(),
	}

	s.logger.Info("Analysis completed",
		zap.String("user_id", record.UserID),
		zap.String("platform", platform.String()),
		zap.String("handle", record.Profile.Handle),
		zap.Int("score", record.Score.Score),
		zap.String("scrape_stage", record.ScrapeStage),
		zap.String("generation_provider", record.Metadata.Provider),
		zap.Bool("parse_failed", result.ParseFailed),
	)

	if s.store == nil {
		return record, nil
	}
	if err := s.store.Upsert(ctx, record); err != nil {
		var pe *errors.PersistenceError
		if !stderrors.As(err, &pe) {
			pe = errors.NewPersistenceError("failed to persist analysis", "record-store", err)
		}
		s.logger.Error("Failed to persist analysis", zap.String("record_id", record.ID), zap.Error(err))
		return record, pe
	}
	return record, nil
}

// Snapshot scrapes, normalizes and scores without calling the model.
func (s *Service) Snapshot(ctx context.Context, platform domain.Platform, profileURLOrHandle string) (*domain.Snapshot, error) {
	if !platform.Valid() {
		return nil, errors.NewValidationError("unsupported platform", "platform", string(platform))
	}
	handle, err := domain.ExtractHandle(platform, profileURLOrHandle)
	if err != nil {
		return nil, err
	}

	outcome, err := s.scraper.Scrape(ctx, gateway.ScrapeJob{
		Platform:   platform,
		Handle:     handle,
		ProfileURL: strings.TrimSpace(profileURLOrHandle),
	})
	if err != nil {
		return nil, err
	}

	stage := string(outcome.Stage)
	now := s.now()
	profile, err := normalizer.NormalizeAt(platform, outcome.Payload, now)
	if err != nil || profile == nil {
		s.logger.Warn("Provider payload unusable, using synthetic profile",
			zap.String("platform", platform.String()),
			zap.String("handle", handle),
			zap.String("channel", outcome.Channel),
			zap.Error(err),
		)
		profile, err = normalizer.NormalizeAt(platform, gateway.SyntheticPayload(platform, handle), now)
		if err != nil {
			return nil, fmt.Errorf("normalize synthetic profile: %w", err)
		}
		stage = string(gateway.StageSynthetic)
	}

	if profile.Handle == "" {
		profile.Handle = handle
	}
	if profile.ProfileURL == "" {
		profile.ProfileURL = domain.ProfileURL(platform, profile.Handle)
	}

	return &domain.Snapshot{
		Profile:     *profile,
		Score:       scoring.Score(*profile),
		Breakdown:   scoring.Breakdown(*profile),
		ScrapeStage: stage,
	}, nil
}
