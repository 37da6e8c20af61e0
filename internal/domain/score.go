package domain

// ScoreResult is the deterministic viral score of a profile.
type ScoreResult struct {
	Score   int    `json:"score"`
	Insight string `json:"insight"`
}

// ScoreBreakdown exposes the points awarded per tier.
type ScoreBreakdown struct {
	FollowerPoints   int `json:"followerPoints"`
	EngagementPoints int `json:"engagementPoints"`
	VolumePoints     int `json:"volumePoints"`
	Total            int `json:"total"`
}
