package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kapu/viralscope-go/internal/constants"
	"github.com/kapu/viralscope-go/internal/domain"
	"github.com/kapu/viralscope-go/internal/util"
	"go.uber.org/zap"
)

const apifySampleSize = 12

// ApifyChannel runs a platform's Apify actor synchronously and returns its
// dataset items. The token travels as the documented query parameter.
type ApifyChannel struct {
	httpClient *http.Client
	baseURL    string
	token      string
	actors     map[domain.Platform]string
	logger     *zap.Logger
}

func NewApifyChannel(httpClient *http.Client, baseURL, token string, actors map[domain.Platform]string, logger *zap.Logger) *ApifyChannel {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = constants.APIConfig.ApifyBaseURL
	}
	return &ApifyChannel{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      token,
		actors:     actors,
		logger:     util.OrNop(logger),
	}
}

func (a *ApifyChannel) Name() string {
	return "apify"
}

func (a *ApifyChannel) Supports(platform domain.Platform) bool {
	return a.token != "" && a.actors[platform] != ""
}

func (a *ApifyChannel) Scrape(ctx context.Context, job ScrapeJob) ([]byte, error) {
	actor := a.actors[job.Platform]
	if actor == "" {
		return nil, fmt.Errorf("apify: no actor configured for %s", job.Platform)
	}

	encoded, err := json.Marshal(actorInput(job))
	if err != nil {
		return nil, fmt.Errorf("apify: encode input: %w", err)
	}

	endpoint := fmt.Sprintf("%s/acts/%s/run-sync-get-dataset-items?%s",
		a.baseURL, url.PathEscape(actor), url.Values{"token": {a.token}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("apify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("apify %s: %w", actor, err)
	}
	defer resp.Body.Close()

	body, err := readJSONResponse(a.Name(), resp)
	if err != nil {
		return nil, err
	}

	items := unwrapItems(body)
	a.logger.Debug("Apify dataset received",
		zap.String("actor", actor),
		zap.String("platform", job.Platform.String()),
		zap.Int("bytes", len(items)),
	)
	return items, nil
}

// actorInput follows each default actor's input schema.
func actorInput(job ScrapeJob) map[string]any {
	profileURL := domain.ProfileURL(job.Platform, job.Handle)
	switch job.Platform {
	case domain.PlatformInstagram:
		return map[string]any{
			"usernames":    []string{job.Handle},
			"resultsLimit": apifySampleSize,
		}
	case domain.PlatformTikTok:
		return map[string]any{
			"profiles":             []string{job.Handle},
			"resultsPerPage":       apifySampleSize,
			"shouldDownloadVideos": false,
			"shouldDownloadCovers": false,
		}
	case domain.PlatformYouTube:
		return map[string]any{
			"startUrls":  []map[string]string{{"url": profileURL}},
			"maxResults": apifySampleSize,
		}
	default:
		return map[string]any{
			"usernames":  []string{job.Handle},
			"startUrls":  []map[string]string{{"url": profileURL}},
			"maxResults": apifySampleSize,
		}
	}
}
