package prompt

// SystemInstruction is sent with every diagnosis request.
const SystemInstruction = "You are a data-driven social media growth strategist. Answer only with JSON that matches the provided schema. Base every claim on the metrics you are given."

func stringArray() map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
}

// DiagnosisSchema describes the StrategyReport JSON the model must emit.
// A fresh map is returned on every call so callers may mutate it.
func DiagnosisSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"viralScore": map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
			"diagnosis": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"summary":    map[string]any{"type": "string"},
					"strengths":  stringArray(),
					"weaknesses": stringArray(),
					"bottleneck": map[string]any{"type": "string"},
				},
				"required": []string{"summary", "strengths", "weaknesses", "bottleneck"},
			},
			"contentPillars": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title":        map[string]any{"type": "string"},
						"description":  map[string]any{"type": "string"},
						"exampleIdeas": stringArray(),
					},
					"required": []string{"title", "description"},
				},
			},
			"nextPost": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"format":         map[string]any{"type": "string"},
					"hook":           map[string]any{"type": "string"},
					"caption":        map[string]any{"type": "string"},
					"callToAction":   map[string]any{"type": "string"},
					"bestTimeToPost": map[string]any{"type": "string"},
				},
				"required": []string{"format", "hook", "caption"},
			},
		},
		"required": []string{"viralScore", "diagnosis", "contentPillars", "nextPost"},
	}
}
