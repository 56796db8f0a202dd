package generate

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"
)

// AnthropicCompleter adapts the Anthropic messages API to the Completer
// interface.
type AnthropicCompleter struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	log       zerolog.Logger
}

// NewAnthropic creates a completer for the given model. The API key comes
// from the environment (ANTHROPIC_API_KEY) via the SDK's defaults.
func NewAnthropic(model string, log zerolog.Logger) *AnthropicCompleter {
	return &AnthropicCompleter{
		client:    anthropic.NewClient(),
		model:     anthropic.Model(model),
		maxTokens: 1024,
		log:       log,
	}
}

// NewAnthropicWithKey creates a completer with an explicit API key.
func NewAnthropicWithKey(model, apiKey string, log zerolog.Logger) *AnthropicCompleter {
	return &AnthropicCompleter{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     anthropic.Model(model),
		maxTokens: 1024,
		log:       log,
	}
}

func (c *AnthropicCompleter) params(msgs []Message) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
	}
	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			params.System = append(params.System, anthropic.TextBlockParam{Text: m.Content})
		case RoleAssistant:
			params.Messages = append(params.Messages,
				anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			params.Messages = append(params.Messages,
				anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return params
}

// Complete requests a single full response.
func (c *AnthropicCompleter) Complete(ctx context.Context, msgs []Message) (string, error) {
	resp, err := c.client.Messages.New(ctx, c.params(msgs))
	if err != nil {
		c.log.Debug().Err(err).Msg("completion request failed")
		return "", err
	}
	var out string
	for _, block := range resp.Content {
		if v, ok := block.AsAny().(anthropic.TextBlock); ok {
			out += v.Text
		}
	}
	if out == "" {
		return "", errors.New("generate: empty completion")
	}
	return out, nil
}

// Stream requests an incremental response and forwards each text delta.
func (c *AnthropicCompleter) Stream(ctx context.Context, msgs []Message, onChunk func(string) error) error {
	stream := c.client.Messages.NewStreaming(ctx, c.params(msgs))
	for stream.Next() {
		event := stream.Current()
		delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
		if !ok {
			continue
		}
		text, ok := delta.Delta.AsAny().(anthropic.TextDelta)
		if !ok || text.Text == "" {
			continue
		}
		if err := onChunk(text.Text); err != nil {
			return err
		}
	}
	if err := stream.Err(); err != nil {
		c.log.Debug().Err(err).Msg("completion stream failed")
		return err
	}
	return nil
}
