package completion

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Compile-time interface check
var _ Completer = (*OpenAI)(nil)

// maxCompletionTokens bounds every completion; replies here are short
// (slot extraction JSON, report insights, assistant answers).
const maxCompletionTokens = 512

// ChatService defines the interface for making chat completion API calls.
// This abstraction enables testing without calling the real OpenAI API.
type ChatService interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAI implements the completion service using OpenAI's API
type OpenAI struct {
	chat  ChatService
	model openai.ChatModel
}

// NewOpenAI creates a new OpenAI completion service
func NewOpenAI(apiKey, model string) *OpenAI {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAI{
		chat:  client.Chat.Completions,
		model: openai.ChatModel(model),
	}
}

// Complete sends the prompt (with an optional system prompt) and returns the
// assistant's reply text.
func (o *OpenAI) Complete(ctx context.Context, system, prompt string) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	resp, err := o.chat.New(ctx, openai.ChatCompletionNewParams{
		Messages:  openai.F(messages),
		Model:     openai.F(o.model),
		MaxTokens: openai.F(int64(maxCompletionTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion failed: no choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

// ModelName returns the completion model name
func (o *OpenAI) ModelName() string {
	return string(o.model)
}
