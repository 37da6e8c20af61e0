package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderDiagnosis(t *testing.T) {
	out, err := NewPromptBuilder().Render(TemplateDiagnosis, DiagnosisData{
		Platform:       "instagram",
		Handle:         "natgeo",
		Followers:      15400,
		Posts:          85,
		EngagementRate: "4.50",
		Score:          65,
		ScoreInsight:   "Strong momentum",
		Objective:      "sell my course",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "@natgeo")
	assert.Contains(t, out, "Followers: 15,400")
	assert.Contains(t, out, "Engagement rate: 4.50%")
	assert.Contains(t, out, "rated this profile 65/100")
	assert.Contains(t, out, "sell my course")
	assert.Contains(t, out, "If engagement rate > 10%, viralScore must be >= 80.")
	assert.Contains(t, out, "Verified: no")
	assert.NotContains(t, out, "placeholders")
}

func TestRenderMarksSyntheticData(t *testing.T) {
	out, err := DefaultPromptBuilder().Render(TemplateDiagnosis, DiagnosisData{Handle: "x", IsSynthetic: true})
	require.NoError(t, err)
	assert.Contains(t, out, "placeholders")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := NewPromptBuilder().Render(TemplateName("missing.tmpl"), nil)
	assert.Error(t, err)
}

func TestGrouped(t *testing.T) {
	assert.Equal(t, "0", grouped(0))
	assert.Equal(t, "999", grouped(999))
	assert.Equal(t, "15,400", grouped(15400))
	assert.Equal(t, "1,234,567", grouped(1234567))
	assert.Equal(t, "-1,000", grouped(-1000))
}

func TestDiagnosisSchemaIsFresh(t *testing.T) {
	a := DiagnosisSchema()
	a["type"] = "mutated"
	assert.Equal(t, "object", DiagnosisSchema()["type"])
}
