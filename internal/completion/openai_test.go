package completion

import (
	"context"
	"errors"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// mockChatService records the params it was called with and returns canned
// results.
type mockChatService struct {
	response   *openai.ChatCompletion
	err        error
	lastParams openai.ChatCompletionNewParams
}

func (m *mockChatService) New(_ context.Context, params openai.ChatCompletionNewParams, _ ...option.RequestOption) (*openai.ChatCompletion, error) {
	m.lastParams = params
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func chatResponse(content string) *openai.ChatCompletion {
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

func TestComplete(t *testing.T) {
	mock := &mockChatService{response: chatResponse("the reply")}
	svc := &OpenAI{chat: mock, model: "gpt-4o-mini"}

	got, err := svc.Complete(context.Background(), "", "the prompt")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "the reply" {
		t.Errorf("Complete() = %q, want %q", got, "the reply")
	}
	if n := len(mock.lastParams.Messages.Value); n != 1 {
		t.Errorf("sent %d messages, want 1", n)
	}
}

func TestCompleteWithSystemPrompt(t *testing.T) {
	mock := &mockChatService{response: chatResponse("ok")}
	svc := &OpenAI{chat: mock, model: "gpt-4o-mini"}

	if _, err := svc.Complete(context.Background(), "be brief", "the prompt"); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if n := len(mock.lastParams.Messages.Value); n != 2 {
		t.Errorf("sent %d messages, want 2", n)
	}
}

func TestCompleteServiceError(t *testing.T) {
	mock := &mockChatService{err: errors.New("rate limited")}
	svc := &OpenAI{chat: mock, model: "gpt-4o-mini"}

	if _, err := svc.Complete(context.Background(), "", "prompt"); err == nil {
		t.Error("Complete() error = nil, want error")
	}
}

func TestCompleteNoChoices(t *testing.T) {
	mock := &mockChatService{response: &openai.ChatCompletion{}}
	svc := &OpenAI{chat: mock, model: "gpt-4o-mini"}

	if _, err := svc.Complete(context.Background(), "", "prompt"); err == nil {
		t.Error("Complete() error = nil, want error")
	}
}

func TestModelName(t *testing.T) {
	svc := &OpenAI{model: "gpt-4o-mini"}
	if got := svc.ModelName(); got != "gpt-4o-mini" {
		t.Errorf("ModelName() = %q, want %q", got, "gpt-4o-mini")
	}
}
