package summary

import (
	"context"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const temperature = 0.6

// Anthropic summarizes through the Anthropic Messages API.
type Anthropic struct {
	client    sdk.Client
	model     string
	maxTokens int64
}

// NewAnthropic creates a summarizer for the given model. Extra request
// options are passed to the SDK client.
func NewAnthropic(apiKey, model string, maxTokens int64, opts ...option.RequestOption) *Anthropic {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Anthropic{
		client:    sdk.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
	}
}

func (a *Anthropic) Summarize(ctx context.Context, prompt string) (string, error) {
	msg, err := a.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:       sdk.Model(a.model),
		MaxTokens:   a.maxTokens,
		Temperature: sdk.Float(temperature),
		System:      []sdk.TextBlockParam{{Text: SystemPrompt}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "summary: create message")
	}

	zap.L().Debug("summary usage",
		zap.String("model", string(msg.Model)),
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
	)

	var parts []string
	for _, b := range msg.Content {
		if b.Type == "text" && b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	if len(parts) == 0 {
		return "", eris.New("summary: response contained no text")
	}
	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}
