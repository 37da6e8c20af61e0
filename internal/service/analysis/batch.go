package analysis

import (
	"context"
	"fmt"

	"github.com/kapu/viralscope-go/internal/domain"
	"github.com/kapu/viralscope-go/pkg/errors"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// BatchItem is the outcome of one request in a batch. Record may be set
// even when Err is, for persistence failures.
type BatchItem struct {
	Record *domain.AnalysisRecord
	Err    error
}

// AnalyzeBatch runs independent chains on a bounded pool. Results keep the
// order of reqs.
func (s *Service) AnalyzeBatch(ctx context.Context, reqs []domain.AnalysisRequest) ([]BatchItem, error) {
	if len(reqs) == 0 {
		return nil, errors.NewValidationError("at least one request is required", "items", 0)
	}
	if s.opts.MaxBatchSize > 0 && len(reqs) > s.opts.MaxBatchSize {
		return nil, errors.NewValidationError(
			fmt.Sprintf("batch exceeds %d requests", s.opts.MaxBatchSize), "items", len(reqs))
	}

	results := make([]BatchItem, len(reqs))
	p := pool.New().WithMaxGoroutines(s.opts.BatchConcurrency)
	for i, req := range reqs {
		p.Go(func() {
			record, err := s.Analyze(ctx, req)
			results[i] = BatchItem{Record: record, Err: err}
		})
	}
	p.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	s.logger.Info("Batch analysis finished",
		zap.Int("requests", len(reqs)),
		zap.Int("failed", failed),
	)
	return results, nil
}
