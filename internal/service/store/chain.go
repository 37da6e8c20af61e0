// Package store fans analysis records out to the configured backends.
package store

import (
	"context"
	stderrors "errors"

	"github.com/kapu/viralscope-go/internal/domain"
	"github.com/kapu/viralscope-go/internal/util"
	"github.com/kapu/viralscope-go/pkg/errors"
	"go.uber.org/zap"
)

// Backend persists and reads back the latest record per user and platform.
type Backend interface {
	Upsert(ctx context.Context, record *domain.AnalysisRecord) error
	Latest(ctx context.Context, userID string, platform domain.Platform) (*domain.AnalysisRecord, error)
}

// Chain writes to an authoritative backend and mirrors to replicas. Replica
// failures are logged and never surface to the caller.
type Chain struct {
	primary  Backend
	replicas []Backend
	logger   *zap.Logger
}

func NewChain(primary Backend, logger *zap.Logger, replicas ...Backend) *Chain {
	return &Chain{
		primary:  primary,
		replicas: replicas,
		logger:   util.OrNop(logger),
	}
}

func (c *Chain) Upsert(ctx context.Context, record *domain.AnalysisRecord) error {
	if err := c.primary.Upsert(ctx, record); err != nil {
		var pe *errors.PersistenceError
		if stderrors.As(err, &pe) {
			return pe
		}
		return errors.NewPersistenceError("failed to persist analysis", "primary", err)
	}
	c.mirror(ctx, record)
	return nil
}

// Latest reads replicas first and falls back to the primary. A primary hit
// warms the replicas.
func (c *Chain) Latest(ctx context.Context, userID string, platform domain.Platform) (*domain.AnalysisRecord, error) {
	for _, r := range c.replicas {
		record, err := r.Latest(ctx, userID, platform)
		if err != nil {
			c.logger.Warn("Replica read failed", zap.String("user_id", userID), zap.Error(err))
			continue
		}
		if record != nil {
			return record, nil
		}
	}

	record, err := c.primary.Latest(ctx, userID, platform)
	if err != nil {
		var pe *errors.PersistenceError
		if stderrors.As(err, &pe) {
			return nil, pe
		}
		return nil, errors.NewPersistenceError("failed to load analysis", "primary", err)
	}
	if record != nil {
		c.mirror(ctx, record)
	}
	return record, nil
}

func (c *Chain) mirror(ctx context.Context, record *domain.AnalysisRecord) {
	for _, r := range c.replicas {
		if err := r.Upsert(ctx, record); err != nil {
			c.logger.Warn("Replica write failed",
				zap.String("record_id", record.ID),
				zap.Error(err),
			)
		}
	}
}
