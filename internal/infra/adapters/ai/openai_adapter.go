package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"telegram-nutrition-bot/internal/domain"
	"telegram-nutrition-bot/internal/domain/model"
	"telegram-nutrition-bot/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.VisionAdapter = (*OpenAIAdapter)(nil)

// OpenAIAdapter implements adapter.VisionAdapter using Chat Completions with
// an inline data-URI image.
type OpenAIAdapter struct {
	client openai.Client
	model  string
	maxOut int
}

func NewOpenAIAdapter(apiKey, baseURL, model string, maxOut int) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIAdapter{
		client: openai.NewClient(opts...),
		model:  model,
		maxOut: maxOut,
	}, nil
}

func (o *OpenAIAdapter) Name() string { return "openai" }

func (o *OpenAIAdapter) Analyze(ctx context.Context, req model.InferenceRequest) (model.InferenceResult, error) {
	if len(req.Image) == 0 {
		return model.InferenceResult{}, fmt.Errorf("%w: openai: no image", domain.ErrInvalidArgument)
	}
	mime := req.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	dataURI := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(req.Image)

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(req.Prompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURI}),
			}),
		},
	}
	if o.maxOut > 0 {
		params.MaxCompletionTokens = openai.Int(int64(o.maxOut))
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return model.InferenceResult{}, fmt.Errorf("%w: openai: %w", domain.ErrInference, err)
	}

	var text string
	for _, c := range resp.Choices {
		if strings.TrimSpace(c.Message.Content) != "" {
			text = c.Message.Content
			break
		}
	}
	if text == "" {
		return model.InferenceResult{}, fmt.Errorf("%w: openai: %w", domain.ErrInference, domain.ErrEmptyResponse)
	}
	return model.InferenceResult{
		Text:  text,
		Model: o.model,
		Usage: model.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}
