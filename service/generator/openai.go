package generator

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI implements Service using the official openai-go SDK (chat completions).
type OpenAI struct {
	model string
	opts  []option.RequestOption
}

// NewOpenAI builds an OpenAI-backed generator from settings.
func NewOpenAI(settings *Settings) (*OpenAI, error) {
	if settings.APIKey == "" {
		return nil, errors.New("openai api key missing; provide generator.apiKey")
	}
	if settings.Model == "" {
		return nil, errors.New("generator model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(settings.APIKey)}
	if settings.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(settings.BaseURL))
	}
	return &OpenAI{model: settings.Model, opts: opts}, nil
}

func (o *OpenAI) Generate(ctx context.Context, request *ContentRequest) (string, error) {
	client := openai.NewClient(o.opts...)
	prompt := Build(request)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

var _ Service = (*OpenAI)(nil)
