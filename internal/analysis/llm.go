package analysis

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alanyoungcy/polyanalyst/internal/domain"
)

const commentSystemPrompt = "You are a prediction-market analyst. Given one " +
	"market's metadata, write at most three sentences on what the numbers " +
	"suggest. Do not give financial advice and do not invent data."

// LLMCommentator generates commentary through an OpenAI-compatible chat
// completion endpoint.
type LLMCommentator struct {
	client *openai.Client
	model  string
}

// NewLLMCommentator creates a commentator for the given credentials. baseURL
// may be empty for the stock OpenAI endpoint, or point at any compatible
// gateway.
func NewLLMCommentator(apiKey, baseURL, model string) *LLMCommentator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &LLMCommentator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Comment asks the model for a short read on the market.
func (c *LLMCommentator) Comment(ctx context.Context, m domain.Market) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: commentSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: Summarize(m)},
		},
		MaxTokens: 200,
	})
	if err != nil {
		return "", fmt.Errorf("analysis: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("analysis: empty completion response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
