// File: internal/infra/adapters/ai/gemini_adapter.go
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"telegram-nutrition-bot/internal/domain"
	"telegram-nutrition-bot/internal/domain/model"
	"telegram-nutrition-bot/internal/domain/ports/adapter"
)

var _ adapter.VisionAdapter = (*GeminiAdapter)(nil)

type GeminiAdapter struct {
	client *genai.Client
	model  string
	maxOut int
}

// NewGeminiAdapter creates a Gemini adapter using the official SDK. An empty
// baseURL keeps the SDK default endpoint.
func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, model string, maxOut int) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: c, model: model, maxOut: maxOut}, nil
}

func (g *GeminiAdapter) Name() string { return "gemini" }

func (g *GeminiAdapter) Analyze(ctx context.Context, req model.InferenceRequest) (model.InferenceResult, error) {
	if len(req.Image) == 0 {
		return model.InferenceResult{}, fmt.Errorf("%w: gemini: no image", domain.ErrInvalidArgument)
	}
	mime := req.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}

	contents := []*genai.Content{{
		Role: string(genai.RoleUser),
		Parts: []*genai.Part{
			{Text: req.Prompt},
			{InlineData: &genai.Blob{MIMEType: mime, Data: req.Image}},
		},
	}}
	cfg := &genai.GenerateContentConfig{}
	if g.maxOut > 0 {
		cfg.MaxOutputTokens = int32(g.maxOut)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return model.InferenceResult{}, fmt.Errorf("%w: gemini: %w", domain.ErrInference, err)
	}

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return model.InferenceResult{}, fmt.Errorf("%w: gemini: %w", domain.ErrInference, domain.ErrEmptyResponse)
	}

	out := model.InferenceResult{Text: text, Model: g.model}
	if resp.UsageMetadata != nil {
		out.Usage = model.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return out, nil
}

// responseText joins the non-thought text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p == nil || p.Thought || p.Text == "" {
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String()
}
