package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// ErrNoAnswer is returned when the model replies with nothing usable
var ErrNoAnswer = errors.New("no response choices returned")

// ChatGPT represents a client for the OpenAI chat completions API
type ChatGPT struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// New creates a new ChatGPT client. baseURL may be empty to use the OpenAI endpoint.
func New(apiKey, model, baseURL string) (*ChatGPT, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	return &ChatGPT{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       model,
		maxTokens:   100,
		temperature: 0.7,
	}, nil
}

// GenerateExample generates an example sentence for the given word
func (c *ChatGPT) GenerateExample(ctx context.Context, term, meaning string) (string, error) {
	prompt := fmt.Sprintf(
		"Generate a short, practical example sentence in English that naturally includes the word '%s'.",
		term,
	)
	if meaning != "" {
		prompt += fmt.Sprintf(" Use it in the sense of '%s'.", meaning)
	}
	prompt += " Return only the sentence."

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You help people learn English vocabulary by writing clear example sentences."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoAnswer
	}

	// Clean up the response
	example := strings.TrimSpace(resp.Choices[0].Message.Content)
	example = strings.Trim(example, "\"")
	if example == "" {
		return "", ErrNoAnswer
	}
	return example, nil
}
