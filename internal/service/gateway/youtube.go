package gateway

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/kapu/viralscope-go/internal/domain"
	"github.com/kapu/viralscope-go/internal/util"
	"github.com/kapu/viralscope-go/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// YouTubeChannel reads public channel statistics from the Data API v3. The
// payload is the channel resource plus a recentVideos sample.
type YouTubeChannel struct {
	service      *youtube.Service
	recentVideos int64
	logger       *zap.Logger
}

func NewYouTubeService(ctx context.Context, apiKey string, opts ...option.ClientOption) (*youtube.Service, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return service, nil
}

func NewYouTubeChannel(service *youtube.Service, recentVideos int, logger *zap.Logger) *YouTubeChannel {
	if recentVideos < 0 {
		recentVideos = 0
	}
	return &YouTubeChannel{
		service:      service,
		recentVideos: int64(recentVideos),
		logger:       util.OrNop(logger),
	}
}

func (y *YouTubeChannel) Name() string {
	return "youtube-data-api"
}

func (y *YouTubeChannel) Supports(platform domain.Platform) bool {
	return y.service != nil && platform == domain.PlatformYouTube
}

type youtubePayload struct {
	Kind         string                     `json:"kind"`
	ID           string                     `json:"id"`
	Snippet      *youtube.ChannelSnippet    `json:"snippet,omitempty"`
	Statistics   *youtube.ChannelStatistics `json:"statistics,omitempty"`
	RecentVideos []youtubeVideo             `json:"recentVideos,omitempty"`
}

type youtubeVideo struct {
	ID         string                   `json:"id"`
	Statistics *youtube.VideoStatistics `json:"statistics,omitempty"`
}

func (y *YouTubeChannel) Scrape(ctx context.Context, job ScrapeJob) ([]byte, error) {
	channel, err := y.findChannel(ctx, job.Handle)
	if err != nil {
		return nil, err
	}

	payload := youtubePayload{
		Kind:       "youtube#channel",
		ID:         channel.Id,
		Snippet:    channel.Snippet,
		Statistics: channel.Statistics,
	}

	if y.recentVideos > 0 && channel.ContentDetails != nil && channel.ContentDetails.RelatedPlaylists != nil {
		videos, err := y.recentUploads(ctx, channel.ContentDetails.RelatedPlaylists.Uploads)
		if err != nil {
			// channel statistics alone still normalize
			y.logger.Warn("Failed to load recent videos", zap.String("channel_id", channel.Id), zap.Error(err))
		}
		payload.RecentVideos = videos
	}

	body, err := json.Marshal([]youtubePayload{payload})
	if err != nil {
		return nil, fmt.Errorf("youtube: encode payload: %w", err)
	}
	return body, nil
}

func (y *YouTubeChannel) findChannel(ctx context.Context, handle string) (*youtube.Channel, error) {
	parts := []string{"snippet", "statistics", "contentDetails"}
	handle = strings.TrimPrefix(handle, "@")

	calls := []*youtube.ChannelsListCall{}
	if strings.HasPrefix(handle, "UC") && len(handle) == 24 {
		calls = append(calls, y.service.Channels.List(parts).Id(handle))
	} else {
		calls = append(calls,
			y.service.Channels.List(parts).ForHandle(handle),
			y.service.Channels.List(parts).ForUsername(handle),
		)
	}

	for _, call := range calls {
		resp, err := call.Context(ctx).Do()
		if err != nil {
			return nil, wrapGoogleError(err)
		}
		if len(resp.Items) > 0 {
			return resp.Items[0], nil
		}
	}
	return nil, errors.NewAPIError(fmt.Sprintf("youtube channel %q not found", handle), y.Name(), http.StatusNotFound, nil)
}

func (y *YouTubeChannel) recentUploads(ctx context.Context, playlistID string) ([]youtubeVideo, error) {
	if playlistID == "" {
		return nil, nil
	}

	items, err := y.service.PlaylistItems.List([]string{"contentDetails"}).
		PlaylistId(playlistID).
		MaxResults(y.recentVideos).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapGoogleError(err)
	}

	ids := make([]string, 0, len(items.Items))
	for _, item := range items.Items {
		if item.ContentDetails != nil && item.ContentDetails.VideoId != "" {
			ids = append(ids, item.ContentDetails.VideoId)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	resp, err := y.service.Videos.List([]string{"statistics"}).Id(ids...).Context(ctx).Do()
	if err != nil {
		return nil, wrapGoogleError(err)
	}

	videos := make([]youtubeVideo, 0, len(resp.Items))
	for _, v := range resp.Items {
		videos = append(videos, youtubeVideo{ID: v.Id, Statistics: v.Statistics})
	}
	return videos, nil
}

func wrapGoogleError(err error) error {
	var gErr *googleapi.Error
	if stderrors.As(err, &gErr) {
		apiErr := errors.NewAPIError(gErr.Message, "youtube-data-api", gErr.Code, nil)
		apiErr.Cause = err
		return apiErr
	}
	return fmt.Errorf("youtube: %w", err)
}
