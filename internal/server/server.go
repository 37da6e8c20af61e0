// Package server exposes the analysis pipeline and the relay endpoints over
// HTTP.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kapu/viralscope-go/internal/constants"
	"github.com/kapu/viralscope-go/internal/domain"
	"github.com/kapu/viralscope-go/internal/service/analysis"
	"github.com/kapu/viralscope-go/internal/service/gateway"
	"github.com/kapu/viralscope-go/internal/util"
	"go.uber.org/zap"
)

type Analyzer interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisRecord, error)
	AnalyzeBatch(ctx context.Context, reqs []domain.AnalysisRequest) ([]analysis.BatchItem, error)
	Snapshot(ctx context.Context, platform domain.Platform, profileURLOrHandle string) (*domain.Snapshot, error)
}

// Relay runs the direct provider channels for the relay endpoints.
type Relay interface {
	ScrapeDirect(ctx context.Context, job gateway.ScrapeJob) ([]byte, string, error)
	GenerateDirect(ctx context.Context, req domain.GenerationRequest) (gateway.GenerationReply, string, error)
}

type RecordReader interface {
	Latest(ctx context.Context, userID string, platform domain.Platform) (*domain.AnalysisRecord, error)
}

type Handler struct {
	analyzer Analyzer
	relay    Relay
	records  RecordReader
	logger   *zap.Logger
}

// NewHandler builds the HTTP handler. records may be nil when no store is
// configured; analyses are then reported as not persisted.
func NewHandler(analyzer Analyzer, relay Relay, records RecordReader, logger *zap.Logger) *Handler {
	return &Handler{
		analyzer: analyzer,
		relay:    relay,
		records:  records,
		logger:   util.OrNop(logger),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(h.recoverMiddleware)
	r.Use(h.loggingMiddleware)

	r.Get("/healthz", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/analysis/{userId}/{platform}", h.latestAnalysis)

		r.Group(func(r chi.Router) {
			r.Use(requireJSON)
			r.Post("/analyze", h.analyze)
			r.Post("/analyze/batch", h.analyzeBatch)
			r.Post("/snapshot", h.snapshot)
			r.Post("/scrape", h.relayScrape)
			r.Post("/generate", h.relayGenerate)
		})
	})
	return r
}

func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: constants.APIConfig.ServerReadTime,
		ReadTimeout:       constants.APIConfig.ServerReadTime,
	}
}
