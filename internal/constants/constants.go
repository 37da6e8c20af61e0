package constants

import "time"

var GatewayConfig = struct {
	ScrapeTimeout  time.Duration
	RetryBaseDelay time.Duration
	MaxSecondary   int
	PreviewRunes   int
}{
	ScrapeTimeout:  55 * time.Second,
	RetryBaseDelay: 1 * time.Second,
	MaxSecondary:   2, // first try + one retry on 5xx
	PreviewRunes:   200,
}

var CacheTTL = struct {
	Snapshot time.Duration
}{
	Snapshot: 24 * time.Hour,
}

var RedisConfig = struct {
	ReadyTimeout time.Duration
	KeyPrefix    string
}{
	ReadyTimeout: 5 * time.Second,
	KeyPrefix:    "viralscope:snapshot:",
}

var GenerationDefaults = struct {
	Temperature     float32
	MaxOutputTokens int32
}{
	Temperature:     0.4,
	MaxOutputTokens: 4096,
}

var AnalysisLimits = struct {
	MaxObjectiveLength int
	MaxBatchSize       int
}{
	MaxObjectiveLength: 500,
	MaxBatchSize:       10,
}

var SyntheticDefaults = struct {
	Handle string
}{
	Handle: "creator",
}

var APIConfig = struct {
	ApifyBaseURL   string
	MaxBodyBytes   int64
	ServerReadTime time.Duration
}{
	ApifyBaseURL:   "https://api.apify.com/v2",
	MaxBodyBytes:   8 << 20,
	ServerReadTime: 15 * time.Second,
}
