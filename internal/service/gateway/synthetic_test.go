package gateway

import (
	"testing"

	"github.com/kapu/viralscope-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestSyntheticPayloadDeterministic(t *testing.T) {
	a := SyntheticPayload(domain.PlatformTikTok, "dancer")
	b := SyntheticPayload(domain.PlatformTikTok, "@dancer")
	c := SyntheticPayload(domain.PlatformInstagram, "dancer")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	first := gjson.GetBytes(a, "0")
	assert.True(t, first.Get("isSynthetic").Bool())
	assert.Equal(t, "dancer", first.Get("handle").String())
	assert.GreaterOrEqual(t, first.Get("followers").Int(), int64(1000))
	assert.Less(t, first.Get("followers").Int(), int64(50000))
	er := first.Get("engagementRatePercent").Float()
	assert.GreaterOrEqual(t, er, 1.0)
	assert.Less(t, er, 5.0)
}

func TestSyntheticPayloadDefaultsHandle(t *testing.T) {
	payload := SyntheticPayload(domain.PlatformYouTube, "  ")
	assert.Equal(t, "creator", gjson.GetBytes(payload, "0.handle").String())
}
