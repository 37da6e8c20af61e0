package domain

// GenerationOptions tune a single generation call.
type GenerationOptions struct {
	Temperature       *float32 `json:"temperature,omitempty"`
	MaxOutputTokens   *int32   `json:"maxOutputTokens,omitempty"`
	SystemInstruction string   `json:"systemInstruction,omitempty"`
}

// GenerationRequest is built once per AI call. Retries reuse it unchanged.
type GenerationRequest struct {
	Model          string            `json:"model"`
	PromptText     string            `json:"promptText"`
	ResponseSchema map[string]any    `json:"responseSchema,omitempty"`
	Options        GenerationOptions `json:"options"`
}

// StrategyReport is the structured diagnosis the model is asked to emit.
// Fields the model leaves out stay nil.
type StrategyReport struct {
	ViralScore     *int            `json:"viralScore,omitempty"`
	Diagnosis      *Diagnosis      `json:"diagnosis,omitempty"`
	ContentPillars []ContentPillar `json:"contentPillars,omitempty"`
	NextPost       *NextPost       `json:"nextPost,omitempty"`
}

type Diagnosis struct {
	Summary    string   `json:"summary,omitempty"`
	Strengths  []string `json:"strengths,omitempty"`
	Weaknesses []string `json:"weaknesses,omitempty"`
	Bottleneck string   `json:"bottleneck,omitempty"`
}

type ContentPillar struct {
	Title        string   `json:"title,omitempty"`
	Description  string   `json:"description,omitempty"`
	ExampleIdeas []string `json:"exampleIdeas,omitempty"`
}

type NextPost struct {
	Format         string `json:"format,omitempty"`
	Hook           string `json:"hook,omitempty"`
	Caption        string `json:"caption,omitempty"`
	CallToAction   string `json:"callToAction,omitempty"`
	BestTimeToPost string `json:"bestTimeToPost,omitempty"`
}

// GenerationResult is either the parsed JSON object or the raw text with
// ParseFailed set. Callers must handle both. Fields holds every key the
// model sent; Report is the typed view and stays nil when the object does
// not fit the report shape.
type GenerationResult struct {
	Report      *StrategyReport `json:"report,omitempty"`
	Fields      map[string]any  `json:"fields,omitempty"`
	RawText     string          `json:"rawText,omitempty"`
	ParseFailed bool            `json:"parseFailed,omitempty"`
}

// GenerationMetadata records which provider answered.
type GenerationMetadata struct {
	Stage        string `json:"stage"`
	Provider     string `json:"provider"`
	Model        string `json:"model,omitempty"`
	UsedFallback bool   `json:"usedFallback"`
}
