package prompt

// DiagnosisData feeds templates/diagnosis.tmpl.
type DiagnosisData struct {
	Platform       string
	Handle         string
	DisplayName    string
	Bio            string
	Followers      int64
	Following      int64
	Posts          int64
	Likes          int64
	EngagementRate string
	IsVerified     bool
	IsSynthetic    bool
	Score          int
	ScoreInsight   string
	Objective      string
}
