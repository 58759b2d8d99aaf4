package completion

import "context"

// Completer defines the interface contract for chat completion services.
// An empty system prompt sends the user prompt alone.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
	ModelName() string
}
