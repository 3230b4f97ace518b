// Package llm adapts the chat-completions API to the contract.TextGenerator
// interface: one prompt in, free text out. Failures are reported as
// contract.ErrGenerationFailed; no retry is attempted and no timeout is
// applied here, callers control cancellation through the context.
package llm

import (
	"context"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"
	contractx "github.com/suratin/leadpilot/agent/contract"
	openrouterx "github.com/suratin/leadpilot/pkg/openrouter"
)

type Generator struct {
	client      *openaisdk.Client
	model       string
	maxTokens   int64
	temperature float64
}

var _ contractx.TextGenerator = (*Generator)(nil)

func NewGenerator(cfg openrouterx.Config) (*Generator, error) {
	client, err := openrouterx.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client:      client,
		model:       strings.TrimSpace(cfg.Model),
		maxTokens:   cfg.MaxCompletionToken,
		temperature: cfg.Temperature,
	}, nil
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("%w: prompt is empty", contractx.ErrValidation)
	}

	params := openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(g.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.UserMessage(prompt),
		},
	}
	if g.maxTokens > 0 {
		params.MaxTokens = openaisdk.Int(g.maxTokens)
	}
	if g.temperature >= 0 {
		params.Temperature = openaisdk.Float(g.temperature)
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrGenerationFailed, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: completion returned no choices", contractx.ErrGenerationFailed)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: completion text is empty", contractx.ErrGenerationFailed)
	}
	return text, nil
}
