// Package generation turns profile metrics into a diagnosis prompt and
// parses whatever the model sends back.
package generation

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/kapu/viralscope-go/internal/constants"
	"github.com/kapu/viralscope-go/internal/domain"
	"github.com/kapu/viralscope-go/internal/prompt"
	"github.com/kapu/viralscope-go/pkg/errors"
	"github.com/tidwall/gjson"
)

// DiagnosisContext is everything the prompt is built from.
type DiagnosisContext struct {
	Profile   domain.CanonicalProfile
	Score     domain.ScoreResult
	Objective string
}

type Adapter struct {
	builder     *prompt.PromptBuilder
	model       string
	temperature float32
	maxTokens   int32
}

func NewAdapter(model string, builder *prompt.PromptBuilder) *Adapter {
	if builder == nil {
		builder = prompt.DefaultPromptBuilder()
	}
	return &Adapter{
		builder:     builder,
		model:       model,
		temperature: constants.GenerationDefaults.Temperature,
		maxTokens:   constants.GenerationDefaults.MaxOutputTokens,
	}
}

// BuildRequest renders the diagnosis prompt and attaches the output schema.
func (a *Adapter) BuildRequest(dc DiagnosisContext) (domain.GenerationRequest, error) {
	objective := strings.TrimSpace(dc.Objective)
	if objective == "" {
		return domain.GenerationRequest{}, errors.NewValidationError("objective is required", "objective", dc.Objective)
	}
	if len([]rune(objective)) > constants.AnalysisLimits.MaxObjectiveLength {
		return domain.GenerationRequest{}, errors.NewValidationError("objective is too long", "objective", len(objective))
	}

	p := dc.Profile
	text, err := a.builder.Render(prompt.TemplateDiagnosis, prompt.DiagnosisData{
		Platform:       p.Platform.String(),
		Handle:         p.Handle,
		DisplayName:    p.DisplayName,
		Bio:            p.Bio,
		Followers:      p.Followers,
		Following:      p.Following,
		Posts:          p.Posts,
		Likes:          p.Likes,
		EngagementRate: strconv.FormatFloat(p.EngagementRatePercent, 'f', 2, 64),
		IsVerified:     p.IsVerified,
		IsSynthetic:    p.IsSynthetic,
		Score:          dc.Score.Score,
		ScoreInsight:   dc.Score.Insight,
		Objective:      objective,
	})
	if err != nil {
		return domain.GenerationRequest{}, err
	}

	temperature := a.temperature
	maxTokens := a.maxTokens
	return domain.GenerationRequest{
		Model:          a.model,
		PromptText:     text,
		ResponseSchema: prompt.DiagnosisSchema(),
		Options: domain.GenerationOptions{
			Temperature:       &temperature,
			MaxOutputTokens:   &maxTokens,
			SystemInstruction: prompt.SystemInstruction,
		},
	}, nil
}

var fencedBlock = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*[ \t]*\\r?\\n?(.*?)\\r?\\n?[ \t]*```")

// ParseResponse accepts plain JSON, JSON inside a ``` fence with any
// language tag, or free text. Any JSON object is kept whole in Fields. Free
// text and non-object JSON come back as RawText with ParseFailed set.
func ParseResponse(raw string) domain.GenerationResult {
	trimmed := strings.TrimSpace(raw)

	if res, ok := decodeObject(trimmed); ok {
		return res
	}
	if m := fencedBlock.FindStringSubmatch(trimmed); m != nil {
		if res, ok := decodeObject(strings.TrimSpace(m[1])); ok {
			return res
		}
	}
	return domain.GenerationResult{RawText: raw, ParseFailed: true}
}

func decodeObject(text string) (domain.GenerationResult, bool) {
	if text == "" || !gjson.Valid(text) || !gjson.Parse(text).IsObject() {
		return domain.GenerationResult{}, false
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return domain.GenerationResult{}, false
	}
	res := domain.GenerationResult{Fields: fields}

	var report domain.StrategyReport
	if err := json.Unmarshal([]byte(text), &report); err == nil {
		res.Report = &report
	}
	return res, true
}
