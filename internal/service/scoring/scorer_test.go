package scoring

import (
	"testing"

	"github.com/kapu/viralscope-go/internal/domain"
	"github.com/stretchr/testify/assert"
)

func profile(followers int64, engagement float64, posts int64) domain.CanonicalProfile {
	return domain.CanonicalProfile{
		Platform:              domain.PlatformInstagram,
		Followers:             followers,
		EngagementRatePercent: engagement,
		Posts:                 posts,
	}
}

func TestScoreMidTierScenario(t *testing.T) {
	result := Score(profile(15_400, 4.5, 85))

	// 20+20 followers, 15 engagement, 10 volume
	assert.Equal(t, 65, result.Score)
	assert.False(t, result.Score >= 90)
	assert.Equal(t, Insight(60), result.Insight)
	assert.Equal(t, Insight(79), result.Insight)
}

func TestScoreTopTier(t *testing.T) {
	result := Score(profile(1_000_000, 12, 500))
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, Insight(80), result.Insight)
}

func TestEngagementPointsZeroWithoutFollowers(t *testing.T) {
	b := Breakdown(profile(0, 25, 40))
	assert.Equal(t, 0, b.FollowerPoints)
	assert.Equal(t, 0, b.EngagementPoints)
	assert.Equal(t, 10, b.VolumePoints)
	assert.Equal(t, 10, Score(profile(0, 25, 40)).Score)
}

func TestThresholdEdges(t *testing.T) {
	assert.Equal(t, 0, Breakdown(profile(1_000, 0, 30)).Total)
	assert.Equal(t, 20, Breakdown(profile(1_001, 0, 0)).FollowerPoints)
	assert.Equal(t, 15, Breakdown(profile(10, 2, 0)).EngagementPoints)
	assert.Equal(t, 30, Breakdown(profile(10, 5, 0)).EngagementPoints)
	assert.Equal(t, 40, Breakdown(profile(10, 10, 0)).EngagementPoints)
	assert.Equal(t, 20, Breakdown(profile(0, 0, 101)).VolumePoints)
}

func TestScoreIsMonotonic(t *testing.T) {
	followers := []int64{0, 500, 1_000, 1_001, 9_999, 10_001, 50_000, 50_001, 2_000_000}
	engagements := []float64{0, 1.99, 2, 4.99, 5, 9.99, 10, 50}
	posts := []int64{0, 30, 31, 100, 101, 5_000}

	for _, e := range engagements {
		for _, p := range posts {
			prev := -1
			for _, f := range followers {
				s := Score(profile(f, e, p)).Score
				assert.GreaterOrEqual(t, s, prev, "followers f=%d e=%v p=%d", f, e, p)
				prev = s
			}
		}
	}
	for _, f := range followers {
		for _, p := range posts {
			prev := -1
			for _, e := range engagements {
				s := Score(profile(f, e, p)).Score
				assert.GreaterOrEqual(t, s, prev, "engagement f=%d e=%v p=%d", f, e, p)
				prev = s
			}
		}
	}
	for _, f := range followers {
		for _, e := range engagements {
			prev := -1
			for _, p := range posts {
				s := Score(profile(f, e, p)).Score
				assert.GreaterOrEqual(t, s, prev, "posts f=%d e=%v p=%d", f, e, p)
				prev = s
			}
		}
	}
}

func TestInsightBands(t *testing.T) {
	assert.NotEqual(t, Insight(80), Insight(79))
	assert.NotEqual(t, Insight(60), Insight(59))
	assert.NotEqual(t, Insight(40), Insight(39))
	assert.Equal(t, Insight(0), Insight(39))
	assert.Equal(t, Insight(0), Insight(-5))
}

func TestScoreDeterministic(t *testing.T) {
	p := profile(42_000, 3.3, 77)
	assert.Equal(t, Score(p), Score(p))
}
