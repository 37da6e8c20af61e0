package domain

import "time"

// CanonicalProfile is the platform-independent profile snapshot every
// provider payload is normalized into.
type CanonicalProfile struct {
	Platform              Platform  `json:"platform"`
	Handle                string    `json:"handle"`
	DisplayName           string    `json:"displayName"`
	Bio                   string    `json:"bio"`
	AvatarURL             string    `json:"avatarUrl"`
	ProfileURL            string    `json:"profileUrl"`
	Followers             int64     `json:"followers"`
	Following             int64     `json:"following"`
	Posts                 int64     `json:"posts"`
	Likes                 int64     `json:"likes"`
	EngagementRatePercent float64   `json:"engagementRatePercent"`
	IsVerified            bool      `json:"isVerified"`
	IsPrivate             bool      `json:"isPrivate"`
	IsSynthetic           bool      `json:"isSynthetic"`
	SyncedAt              time.Time `json:"syncedAt"`
}

// ScrapeRequest is the inbound body of a scrape operation.
type ScrapeRequest struct {
	Platform           Platform `json:"platform"`
	ProfileURLOrHandle string   `json:"profileUrlOrHandle"`
	Handle             string   `json:"handle,omitempty"`
}
