// Package gateway runs scrape and generation operations over two physical
// paths: the same-origin relay first, then the providers directly. The
// attempts are strictly sequential; a secondary call starts only after the
// primary failure has been observed.
package gateway

import (
	"context"
	"time"

	"github.com/kapu/viralscope-go/internal/constants"
	"github.com/kapu/viralscope-go/internal/domain"
	"github.com/kapu/viralscope-go/internal/util"
	"github.com/kapu/viralscope-go/pkg/errors"
	"go.uber.org/zap"
)

type Operation string

const (
	OpScrape   Operation = "scrape"
	OpGenerate Operation = "generate"
)

type Stage string

const (
	StagePrimary   Stage = "primary"
	StageSecondary Stage = "secondary"
	StageSynthetic Stage = "synthetic"
	StageFailed    Stage = "failed"
)

// NextStage is the transition taken when every call of stage from has failed.
func NextStage(op Operation, from Stage) Stage {
	switch from {
	case StagePrimary:
		return StageSecondary
	case StageSecondary:
		if op == OpScrape {
			return StageSynthetic
		}
		return StageFailed
	}
	return from
}

// ScrapeJob identifies the profile to fetch.
type ScrapeJob struct {
	Platform   domain.Platform `json:"platform"`
	Handle     string          `json:"handle"`
	ProfileURL string          `json:"profileUrlOrHandle"`
}

// GenerationReply is the text a generation channel produced.
type GenerationReply struct {
	Text  string
	Model string
}

type ScrapeChannel interface {
	Name() string
	Supports(platform domain.Platform) bool
	Scrape(ctx context.Context, job ScrapeJob) ([]byte, error)
}

type GenerationChannel interface {
	Name() string
	Generate(ctx context.Context, req domain.GenerationRequest) (GenerationReply, error)
}

// Attempt records one outbound call.
type Attempt struct {
	Stage    Stage         `json:"stage"`
	Channel  string        `json:"channel"`
	Try      int           `json:"try"`
	Status   int           `json:"status,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

type ScrapeOutcome struct {
	Payload []byte
	Stage   Stage
	Channel string
	Trace   []Attempt
}

type GenerateOutcome struct {
	Text    string
	Model   string
	Stage   Stage
	Channel string
	Trace   []Attempt
}

type Config struct {
	PrimaryScrape   ScrapeChannel
	PrimaryGenerate GenerationChannel
	Scrapers        []ScrapeChannel
	Generators      []GenerationChannel

	ScrapeTimeout   time.Duration
	GenerateTimeout time.Duration
	RetryBaseDelay  time.Duration
}

type Gateway struct {
	cfg    Config
	sleep  func(ctx context.Context, d time.Duration) error
	logger *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Gateway {
	if cfg.ScrapeTimeout <= 0 {
		cfg.ScrapeTimeout = constants.GatewayConfig.ScrapeTimeout
	}
	if cfg.RetryBaseDelay < 0 {
		cfg.RetryBaseDelay = constants.GatewayConfig.RetryBaseDelay
	}
	return &Gateway{
		cfg:    cfg,
		sleep:  sleepContext,
		logger: util.OrNop(logger),
	}
}

// Scrape never fails on provider outages: when every channel fails it
// returns a deterministic synthetic payload. It errors only when no channel
// can serve the platform at all.
func (g *Gateway) Scrape(ctx context.Context, job ScrapeJob) (*ScrapeOutcome, error) {
	if !job.Platform.Valid() {
		return nil, errors.NewValidationError("unsupported platform", "platform", string(job.Platform))
	}

	primary := g.cfg.PrimaryScrape
	if primary != nil && !primary.Supports(job.Platform) {
		primary = nil
	}
	direct := g.scrapersFor(job.Platform)
	if primary == nil && len(direct) == 0 {
		return nil, errors.NewCredentialError("no scrape channel configured for "+job.Platform.String(), string(OpScrape))
	}

	out := &ScrapeOutcome{}
	stage := StagePrimary
	for {
		switch stage {
		case StagePrimary:
			if primary != nil {
				payload, err := call(ctx, g, &out.Trace, StagePrimary, primary.Name(), g.cfg.ScrapeTimeout, false,
					func(ctx context.Context) ([]byte, error) { return primary.Scrape(ctx, job) })
				if err == nil {
					out.Payload, out.Stage, out.Channel = payload, StagePrimary, primary.Name()
					return out, nil
				}
			}
		case StageSecondary:
			if ctx.Err() == nil {
				if payload, name, err := g.scrapeDirect(ctx, job, direct, &out.Trace); err == nil {
					out.Payload, out.Stage, out.Channel = payload, StageSecondary, name
					return out, nil
				}
			}
		case StageSynthetic:
			g.logger.Warn("All scrape channels failed, using synthetic profile",
				zap.String("platform", job.Platform.String()),
				zap.String("handle", job.Handle),
				zap.Int("attempts", len(out.Trace)),
			)
			out.Payload, out.Stage, out.Channel = SyntheticPayload(job.Platform, job.Handle), StageSynthetic, "synthetic"
			return out, nil
		}
		stage = NextStage(OpScrape, stage)
	}
}

// Generate surfaces a GENERATION_UNAVAILABLE error when every channel fails.
func (g *Gateway) Generate(ctx context.Context, req domain.GenerationRequest) (*GenerateOutcome, error) {
	primary := g.cfg.PrimaryGenerate
	if primary == nil && len(g.cfg.Generators) == 0 {
		return nil, errors.NewCredentialError("no generation channel configured", string(OpGenerate))
	}

	out := &GenerateOutcome{}
	var lastErr error
	stage := StagePrimary
	for {
		switch stage {
		case StagePrimary:
			if primary != nil {
				reply, err := call(ctx, g, &out.Trace, StagePrimary, primary.Name(), g.cfg.GenerateTimeout, false,
					func(ctx context.Context) (GenerationReply, error) { return primary.Generate(ctx, req) })
				if err == nil {
					out.Text, out.Model, out.Stage, out.Channel = reply.Text, reply.Model, StagePrimary, primary.Name()
					return out, nil
				}
				lastErr = err
			}
		case StageSecondary:
			reply, name, err := g.generateDirect(ctx, req, &out.Trace)
			if err == nil {
				out.Text, out.Model, out.Stage, out.Channel = reply.Text, reply.Model, StageSecondary, name
				return out, nil
			}
			if len(g.cfg.Generators) > 0 {
				lastErr = err
			}
		case StageFailed:
			out.Stage = StageFailed
			g.logger.Error("All generation channels failed",
				zap.Int("attempts", len(out.Trace)),
				zap.Error(lastErr),
			)
			return out, errors.NewProviderUnavailableError(string(OpGenerate), true, attemptNames(out.Trace), lastErr)
		}
		stage = NextStage(OpGenerate, stage)
	}
}

// ScrapeDirect runs only the direct provider channels and reports failure
// instead of degrading. It backs the relay endpoint this service exposes.
func (g *Gateway) ScrapeDirect(ctx context.Context, job ScrapeJob) ([]byte, string, error) {
	if !job.Platform.Valid() {
		return nil, "", errors.NewValidationError("unsupported platform", "platform", string(job.Platform))
	}
	direct := g.scrapersFor(job.Platform)
	if len(direct) == 0 {
		return nil, "", errors.NewCredentialError("no direct scrape channel configured for "+job.Platform.String(), string(OpScrape))
	}
	var trace []Attempt
	return g.scrapeDirect(ctx, job, direct, &trace)
}

// GenerateDirect is ScrapeDirect for generation.
func (g *Gateway) GenerateDirect(ctx context.Context, req domain.GenerationRequest) (GenerationReply, string, error) {
	if len(g.cfg.Generators) == 0 {
		return GenerationReply{}, "", errors.NewCredentialError("no direct generation channel configured", string(OpGenerate))
	}
	var trace []Attempt
	return g.generateDirect(ctx, req, &trace)
}

func (g *Gateway) scrapeDirect(ctx context.Context, job ScrapeJob, channels []ScrapeChannel, trace *[]Attempt) ([]byte, string, error) {
	var lastErr error
	for _, ch := range channels {
		payload, err := call(ctx, g, trace, StageSecondary, ch.Name(), g.cfg.ScrapeTimeout, true,
			func(ctx context.Context) ([]byte, error) { return ch.Scrape(ctx, job) })
		if err == nil {
			return payload, ch.Name(), nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, "", errors.NewProviderUnavailableError(string(OpScrape), false, attemptNames(*trace), lastErr)
}

func (g *Gateway) generateDirect(ctx context.Context, req domain.GenerationRequest, trace *[]Attempt) (GenerationReply, string, error) {
	var lastErr error
	for _, ch := range g.cfg.Generators {
		reply, err := call(ctx, g, trace, StageSecondary, ch.Name(), g.cfg.GenerateTimeout, true,
			func(ctx context.Context) (GenerationReply, error) { return ch.Generate(ctx, req) })
		if err == nil {
			return reply, ch.Name(), nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return GenerationReply{}, "", errors.NewProviderUnavailableError(string(OpGenerate), true, attemptNames(*trace), lastErr)
}

func (g *Gateway) scrapersFor(platform domain.Platform) []ScrapeChannel {
	var out []ScrapeChannel
	for _, ch := range g.cfg.Scrapers {
		if ch.Supports(platform) {
			out = append(out, ch)
		}
	}
	return out
}

// CanScrape reports whether any channel serves platform.
func (g *Gateway) CanScrape(platform domain.Platform) bool {
	if g.cfg.PrimaryScrape != nil && g.cfg.PrimaryScrape.Supports(platform) {
		return true
	}
	return len(g.scrapersFor(platform)) > 0
}

func attemptNames(trace []Attempt) []string {
	names := make([]string, 0, len(trace))
	for _, a := range trace {
		names = append(names, string(a.Stage)+":"+a.Channel)
	}
	return names
}
