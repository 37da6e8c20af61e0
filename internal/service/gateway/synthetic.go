package gateway

import (
	"encoding/json"
	"hash/fnv"
	"math"
	"strings"

	"github.com/kapu/viralscope-go/internal/constants"
	"github.com/kapu/viralscope-go/internal/domain"
	"github.com/kapu/viralscope-go/internal/util"
)

type syntheticRecord struct {
	IsSynthetic           bool    `json:"isSynthetic"`
	Handle                string  `json:"handle"`
	DisplayName           string  `json:"displayName"`
	Bio                   string  `json:"bio"`
	ProfileURL            string  `json:"profileUrl"`
	Followers             int64   `json:"followers"`
	Following             int64   `json:"following"`
	Posts                 int64   `json:"posts"`
	Likes                 int64   `json:"likes"`
	EngagementRatePercent float64 `json:"engagementRatePercent"`
	IsVerified            bool    `json:"isVerified"`
	IsPrivate             bool    `json:"isPrivate"`
}

// SyntheticPayload builds the placeholder profile returned when every scrape
// channel failed. The same platform and handle always yield the same bytes.
func SyntheticPayload(platform domain.Platform, handle string) []byte {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		handle = constants.SyntheticDefaults.Handle
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(platform.String() + ":" + strings.ToLower(handle)))
	seed := h.Sum64()

	followers := int64(1_000 + seed%49_000)
	engagement := util.Round2(1 + float64((seed>>16)%400)/100)
	rec := syntheticRecord{
		IsSynthetic:           true,
		Handle:                handle,
		DisplayName:           handle,
		Bio:                   "Live metrics are temporarily unavailable; showing estimated values.",
		ProfileURL:            domain.ProfileURL(platform, handle),
		Followers:             followers,
		Following:             int64(50 + (seed>>24)%950),
		Posts:                 int64(10 + (seed>>40)%190),
		Likes:                 int64(math.Round(float64(followers) * engagement / 100 * apifySampleSize)),
		EngagementRatePercent: engagement,
	}

	body, _ := json.Marshal([]syntheticRecord{rec})
	return body
}
