package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kapu/viralscope-go/internal/config"
	"github.com/kapu/viralscope-go/internal/domain"
	"github.com/kapu/viralscope-go/internal/prompt"
	"github.com/kapu/viralscope-go/internal/server"
	"github.com/kapu/viralscope-go/internal/service/analysis"
	"github.com/kapu/viralscope-go/internal/service/cache"
	"github.com/kapu/viralscope-go/internal/service/database"
	"github.com/kapu/viralscope-go/internal/service/gateway"
	"github.com/kapu/viralscope-go/internal/service/generation"
	"github.com/kapu/viralscope-go/internal/service/store"
	"go.uber.org/zap"
)

// Container bundles the assembled services.
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	Gateway  *gateway.Gateway
	Analysis *analysis.Service
	Records  *store.Chain

	closers []func()
}

// Handler builds the HTTP surface over the container's services.
func (c *Container) Handler() http.Handler {
	var reader server.RecordReader
	if c.Records != nil {
		reader = c.Records
	}
	return server.NewHandler(c.Analysis, c.Gateway, reader, c.Logger).Routes()
}

// Close releases connections in reverse order of acquisition.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Build assembles channels, the gateway, persistence and the analysis
// pipeline. Postgres and Redis are optional; an empty host disables each.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	c := &Container{Config: cfg, Logger: logger}
	if err := c.assemble(ctx); err != nil {
		c.Close()
		return nil, err
	}

	logger.Info("Application services assembled",
		zap.Bool("relay", cfg.RelayEnabled()),
		zap.Bool("persistence", c.Records != nil),
	)
	return c, nil
}

func (c *Container) assemble(ctx context.Context) error {
	cfg, logger := c.Config, c.Logger

	gw, err := buildGateway(ctx, cfg, logger)
	if err != nil {
		return err
	}
	c.Gateway = gw

	records, err := c.buildRecords(ctx, cfg, logger)
	if err != nil {
		return err
	}
	c.Records = records

	var recordStore analysis.RecordStore
	if records != nil {
		recordStore = records
	}
	adapter := generation.NewAdapter(cfg.Gemini.Model, prompt.DefaultPromptBuilder())
	c.Analysis = analysis.NewService(gw, gw, adapter, recordStore, analysis.Options{
		DefaultObjective: cfg.Analysis.DefaultObjective,
		BatchConcurrency: cfg.Analysis.BatchConcurrency,
		MaxBatchSize:     cfg.Analysis.MaxBatchSize,
	}, logger)
	return nil
}

func buildGateway(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*gateway.Gateway, error) {
	httpClient := &http.Client{}
	gwCfg := gateway.Config{
		ScrapeTimeout:   cfg.Gateway.ScrapeTimeout,
		GenerateTimeout: cfg.Gateway.GenerateTimeout,
		RetryBaseDelay:  cfg.Gateway.RetryBaseDelay,
	}

	if cfg.RelayEnabled() {
		relay := gateway.NewRelayChannel(httpClient, cfg.Relay.BaseURL, cfg.Relay.ScrapePath, cfg.Relay.GeneratePath, logger)
		gwCfg.PrimaryScrape = relay
		gwCfg.PrimaryGenerate = relay
	}

	// YouTube Data API first so it wins over the Apify actor for YouTube.
	if cfg.YouTube.APIKey != "" {
		svc, err := gateway.NewYouTubeService(ctx, cfg.YouTube.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create youtube service: %w", err)
		}
		gwCfg.Scrapers = append(gwCfg.Scrapers, gateway.NewYouTubeChannel(svc, cfg.YouTube.RecentVideos, logger))
	}
	if cfg.Apify.Token != "" {
		actors := make(map[domain.Platform]string, len(cfg.Apify.Actors))
		for key, actor := range cfg.Apify.Actors {
			if p, err := domain.ParsePlatform(key); err == nil && actor != "" {
				actors[p] = actor
			}
		}
		gwCfg.Scrapers = append(gwCfg.Scrapers,
			gateway.NewApifyChannel(httpClient, cfg.Apify.BaseURL, cfg.Apify.Token, actors, logger))
	}

	if cfg.Gemini.APIKey != "" {
		gemini, err := gateway.NewGeminiChannel(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini channel: %w", err)
		}
		gwCfg.Generators = append(gwCfg.Generators, gemini)
	}
	if cfg.OpenAI.EnableFallback && cfg.OpenAI.APIKey != "" {
		gwCfg.Generators = append(gwCfg.Generators, gateway.NewOpenAIChannel(cfg.OpenAI.APIKey, cfg.OpenAI.Model, logger))
	}

	logger.Info("Gateway channels configured",
		zap.Int("direct_scrapers", len(gwCfg.Scrapers)),
		zap.Int("direct_generators", len(gwCfg.Generators)),
	)
	return gateway.New(gwCfg, logger), nil
}

func (c *Container) buildRecords(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*store.Chain, error) {
	var backends []store.Backend

	if cfg.Postgres.Host != "" {
		postgresSvc, err := database.NewPostgresService(ctx, database.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
			SSLMode:  cfg.Postgres.SSLMode,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres service: %w", err)
		}
		c.closers = append(c.closers, func() {
			_ = postgresSvc.Close()
		})

		repo := database.NewAnalysisRepository(postgresSvc)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		backends = append(backends, repo)
	}

	if cfg.Redis.Host != "" {
		cacheSvc, err := cache.NewCacheService(ctx, cache.CacheConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create cache service: %w", err)
		}
		c.closers = append(c.closers, func() {
			_ = cacheSvc.Close()
		})
		backends = append(backends, cache.NewSnapshotStore(cacheSvc, cfg.Redis.TTL))
	}

	if len(backends) == 0 {
		logger.Warn("No record store configured; analyses will not be persisted")
		return nil, nil
	}
	return store.NewChain(backends[0], logger, backends[1:]...), nil
}
