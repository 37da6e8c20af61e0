package gateway

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kapu/viralscope-go/internal/domain"
	"github.com/kapu/viralscope-go/internal/service/normalizer"
	"github.com/kapu/viralscope-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

func youtubeTestServer(t *testing.T, channels string) *youtube.Service {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/channels"):
			if r.URL.Query().Get("forHandle") == "" && r.URL.Query().Get("id") == "" {
				_, _ = io.WriteString(w, `{"items":[]}`)
				return
			}
			_, _ = io.WriteString(w, channels)
		case strings.HasSuffix(r.URL.Path, "/playlistItems"):
			_, _ = io.WriteString(w, `{"items":[{"contentDetails":{"videoId":"v1"}},{"contentDetails":{"videoId":"v2"}}]}`)
		case strings.HasSuffix(r.URL.Path, "/videos"):
			_, _ = io.WriteString(w, `{"items":[
				{"id":"v1","statistics":{"likeCount":"300","commentCount":"20"}},
				{"id":"v2","statistics":{"likeCount":"100","commentCount":"0"}}
			]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	svc, err := youtube.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return svc
}

func TestYouTubeChannelBuildsNormalizablePayload(t *testing.T) {
	svc := youtubeTestServer(t, `{"items":[{
		"id":"UCabcdefghijklmnopqrstuv",
		"snippet":{"title":"Cooking Lab","customUrl":"@cookinglab","description":"recipes"},
		"statistics":{"subscriberCount":"10000","videoCount":"120","viewCount":"900000"},
		"contentDetails":{"relatedPlaylists":{"uploads":"UUabc"}}
	}]}`)
	ch := NewYouTubeChannel(svc, 2, nil)
	require.True(t, ch.Supports(domain.PlatformYouTube))
	require.False(t, ch.Supports(domain.PlatformTikTok))

	payload, err := ch.Scrape(context.Background(), ScrapeJob{Platform: domain.PlatformYouTube, Handle: "cookinglab"})
	require.NoError(t, err)

	profile, err := normalizer.Normalize(domain.PlatformYouTube, payload)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "cookinglab", profile.Handle)
	assert.Equal(t, "Cooking Lab", profile.DisplayName)
	assert.EqualValues(t, 10000, profile.Followers)
	assert.EqualValues(t, 120, profile.Posts)
	assert.EqualValues(t, 400, profile.Likes)
	// (300+20+100+0)/2 = 210 per video over 10000 followers
	assert.Equal(t, 2.1, profile.EngagementRatePercent)
}

func TestYouTubeChannelNotFound(t *testing.T) {
	svc := youtubeTestServer(t, `{"items":[]}`)
	ch := NewYouTubeChannel(svc, 0, nil)

	_, err := ch.Scrape(context.Background(), ScrapeJob{Platform: domain.PlatformYouTube, Handle: "nobody"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeAPIError))
	assert.Equal(t, http.StatusNotFound, statusOf(err))
	assert.False(t, isRetryable(err))
}
