package gateway

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/kapu/viralscope-go/internal/domain"
	"github.com/kapu/viralscope-go/internal/util"
	"github.com/kapu/viralscope-go/pkg/errors"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiChannel calls the Gemini API directly with a locally held key.
type GeminiChannel struct {
	client       *genai.Client
	defaultModel string
	logger       *zap.Logger
}

func NewGeminiChannel(ctx context.Context, apiKey, defaultModel string, logger *zap.Logger) (*GeminiChannel, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiChannel{
		client:       client,
		defaultModel: defaultModel,
		logger:       util.OrNop(logger),
	}, nil
}

func (g *GeminiChannel) Name() string {
	return "gemini"
}

func (g *GeminiChannel) Generate(ctx context.Context, req domain.GenerationRequest) (GenerationReply, error) {
	if g.client == nil {
		return GenerationReply{}, fmt.Errorf("gemini client not initialized")
	}

	modelName := g.defaultModel
	if strings.HasPrefix(req.Model, "gemini") {
		modelName = req.Model
	}

	config := &genai.GenerateContentConfig{
		Temperature: req.Options.Temperature,
	}
	if req.Options.MaxOutputTokens != nil {
		config.MaxOutputTokens = *req.Options.MaxOutputTokens
	}
	if req.Options.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(req.Options.SystemInstruction, genai.RoleUser)
	}
	if req.ResponseSchema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseJsonSchema = req.ResponseSchema
	}

	g.logger.Debug("Generating with Gemini",
		zap.String("model", modelName),
		zap.Bool("json_mode", req.ResponseSchema != nil),
	)

	resp, err := g.client.Models.GenerateContent(ctx, modelName, []*genai.Content{
		{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: req.PromptText}},
		},
	}, config)
	if err != nil {
		return GenerationReply{}, fmt.Errorf("gemini: %w", err)
	}

	text := extractTextFromGeminiResponse(resp)
	if text == "" {
		return GenerationReply{}, errors.NewMalformedResponseError("empty response from Gemini", g.Name(), "")
	}

	g.logger.Debug("Gemini response received", zap.Int("length", len(text)))
	return GenerationReply{Text: text, Model: modelName}, nil
}

func extractTextFromGeminiResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return ""
	}

	var texts []string
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}

	return strings.Join(texts, "")
}

// OpenAIChannel is the fallback generation provider.
type OpenAIChannel struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

func NewOpenAIChannel(apiKey, model string, logger *zap.Logger, opts ...option.RequestOption) *OpenAIChannel {
	if apiKey == "" {
		return nil
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := openai.NewClient(opts...)
	return &OpenAIChannel{
		client: &client,
		model:  model,
		logger: util.OrNop(logger),
	}
}

func (o *OpenAIChannel) Name() string {
	return "openai"
}

func (o *OpenAIChannel) Generate(ctx context.Context, req domain.GenerationRequest) (GenerationReply, error) {
	if o.client == nil {
		return GenerationReply{}, fmt.Errorf("OpenAI client not initialized")
	}

	system := req.Options.SystemInstruction
	if req.ResponseSchema != nil {
		system = strings.TrimSpace(system + "\nYou must respond with valid JSON only. Do not include any text outside the JSON object.")
	}

	messages := []openai.ChatCompletionMessageParamUnion{}
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(req.PromptText))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.model),
		Messages: messages,
	}
	if req.Options.MaxOutputTokens != nil {
		params.MaxCompletionTokens = openai.Int(int64(*req.Options.MaxOutputTokens))
	}
	if req.Options.Temperature != nil && !strings.HasPrefix(o.model, "gpt-5") {
		params.Temperature = openai.Float(float64(*req.Options.Temperature))
	}

	o.logger.Info("Fallback: Generating with OpenAI", zap.String("model", o.model))

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if stderrors.As(err, &apiErr) {
			wrapped := errors.NewAPIError("openai request failed", o.Name(), apiErr.StatusCode, nil)
			wrapped.Cause = err
			return GenerationReply{}, wrapped
		}
		return GenerationReply{}, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return GenerationReply{}, errors.NewMalformedResponseError("no choices in OpenAI response", o.Name(), "")
	}

	text := resp.Choices[0].Message.Content
	o.logger.Info("OpenAI response received",
		zap.Int("length", len(text)),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
	)
	return GenerationReply{Text: text, Model: o.model}, nil
}
