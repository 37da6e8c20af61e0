// Package scoring computes the deterministic viral score of a profile.
// Everything here is pure arithmetic; nothing performs I/O.
package scoring

import (
	"github.com/kapu/viralscope-go/internal/domain"
	"github.com/kapu/viralscope-go/internal/util"
)

type tier struct {
	threshold float64
	points    int
	inclusive bool
}

var followerTiers = []tier{
	{threshold: 1_000, points: 20},
	{threshold: 10_000, points: 20},
	{threshold: 50_000, points: 20},
}

var engagementTiers = []tier{
	{threshold: 2, points: 15, inclusive: true},
	{threshold: 5, points: 15, inclusive: true},
	{threshold: 10, points: 10, inclusive: true},
}

var volumeTiers = []tier{
	{threshold: 30, points: 10},
	{threshold: 100, points: 10},
}

type band struct {
	min     int
	insight string
}

// Bands are ordered from the highest floor down.
var bands = []band{
	{min: 80, insight: "Exceptional viral potential: your audience is large and highly engaged, so double down on the formats that already work and scale distribution."},
	{min: 60, insight: "Strong momentum: engagement is healthy, and a more consistent posting rhythm with sharper hooks can push you into the top tier."},
	{min: 40, insight: "Growing presence: the foundation is there, but engagement needs work, so focus on clearer hooks and interacting with your audience."},
	{min: 0, insight: "Early stage: build a consistent content base and a recognizable niche before optimizing for reach."},
}

func award(value float64, tiers []tier) int {
	points := 0
	for _, t := range tiers {
		if value > t.threshold || (t.inclusive && value == t.threshold) {
			points += t.points
		}
	}
	return points
}

// Breakdown returns the points earned per tier. Engagement earns nothing
// when followers is 0.
func Breakdown(profile domain.CanonicalProfile) domain.ScoreBreakdown {
	b := domain.ScoreBreakdown{
		FollowerPoints: award(float64(profile.Followers), followerTiers),
		VolumePoints:   award(float64(profile.Posts), volumeTiers),
	}
	if profile.Followers > 0 {
		b.EngagementPoints = award(profile.EngagementRatePercent, engagementTiers)
	}
	b.Total = util.Clamp(b.FollowerPoints+b.EngagementPoints+b.VolumePoints, 0, 100)
	return b
}

// Score maps a profile to its score and band insight.
func Score(profile domain.CanonicalProfile) domain.ScoreResult {
	total := Breakdown(profile).Total
	return domain.ScoreResult{Score: total, Insight: Insight(total)}
}

// Insight returns the fixed advisory sentence of the band containing score.
func Insight(score int) string {
	for _, b := range bands {
		if score >= b.min {
			return b.insight
		}
	}
	return bands[len(bands)-1].insight
}
