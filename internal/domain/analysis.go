package domain

import "time"

// AnalysisRequest starts one Gateway -> Normalizer -> Scorer -> Adapter chain.
type AnalysisRequest struct {
	UserID     string   `json:"userId"`
	Platform   Platform `json:"platform"`
	ProfileURL string   `json:"profileUrl"`
	Objective  string   `json:"objective,omitempty"`
}

// AnalysisRecord is the combined result handed to the persistence collaborator.
type AnalysisRecord struct {
	ID          string             `json:"id"`
	UserID      string             `json:"userId"`
	Platform    Platform           `json:"platform"`
	Objective   string             `json:"objective,omitempty"`
	Profile     CanonicalProfile   `json:"profile"`
	Score       ScoreResult        `json:"score"`
	Generation  GenerationResult   `json:"generation"`
	Metadata    GenerationMetadata `json:"metadata"`
	ScrapeStage string             `json:"scrapeStage"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// Snapshot is a profile preview without the AI diagnosis.
type Snapshot struct {
	Profile     CanonicalProfile `json:"profile"`
	Score       ScoreResult      `json:"score"`
	Breakdown   ScoreBreakdown   `json:"breakdown"`
	ScrapeStage string           `json:"scrapeStage"`
}
