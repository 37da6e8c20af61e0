package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/kapu/viralscope-go/internal/constants"
	"github.com/kapu/viralscope-go/internal/domain"
	"github.com/kapu/viralscope-go/internal/util"
	"github.com/kapu/viralscope-go/pkg/errors"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// RelayChannel talks to the relay that injects provider credentials server
// side. It serves both operation families.
type RelayChannel struct {
	httpClient   *http.Client
	baseURL      string
	scrapePath   string
	generatePath string
	logger       *zap.Logger
}

func NewRelayChannel(httpClient *http.Client, baseURL, scrapePath, generatePath string, logger *zap.Logger) *RelayChannel {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RelayChannel{
		httpClient:   httpClient,
		baseURL:      baseURL,
		scrapePath:   scrapePath,
		generatePath: generatePath,
		logger:       util.OrNop(logger),
	}
}

func (r *RelayChannel) Name() string {
	return "relay"
}

func (r *RelayChannel) Supports(domain.Platform) bool {
	return true
}

func (r *RelayChannel) Scrape(ctx context.Context, job ScrapeJob) ([]byte, error) {
	body, err := r.post(ctx, r.scrapePath, domain.ScrapeRequest{
		Platform:           job.Platform,
		ProfileURLOrHandle: job.ProfileURL,
		Handle:             job.Handle,
	})
	if err != nil {
		return nil, err
	}
	return unwrapItems(body), nil
}

// Generate returns the relay's "text" field, or the whole JSON body when the
// relay answered with the schema fields directly.
func (r *RelayChannel) Generate(ctx context.Context, req domain.GenerationRequest) (GenerationReply, error) {
	body, err := r.post(ctx, r.generatePath, req)
	if err != nil {
		return GenerationReply{}, err
	}

	reply := GenerationReply{Model: body.Get("model").String()}
	if reply.Model == "" {
		reply.Model = req.Model
	}
	if text := body.Get("text"); text.Type == gjson.String {
		if strings.TrimSpace(text.Str) == "" {
			return GenerationReply{}, errors.NewMalformedResponseError("relay returned empty text", r.Name(),
				util.TruncateString(body.Raw, constants.GatewayConfig.PreviewRunes))
		}
		reply.Text = text.Str
	} else {
		reply.Text = body.Raw
	}
	return reply, nil
}

func (r *RelayChannel) post(ctx context.Context, path string, payload any) (gjson.Result, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("relay: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("relay: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("relay %s: %w", path, err)
	}
	defer resp.Body.Close()

	r.logger.Debug("Relay responded",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("content_type", resp.Header.Get("Content-Type")),
	)
	return readJSONResponse(r.Name(), resp)
}
