package providers

import (
	"context"
)

// Completion is one model reply plus the token usage the backend reported for
// it.
type Completion struct {
	Text       string
	TokensUsed int
}

// Client is a single generative-text backend. Implementations must be safe
// for concurrent use; the orchestrator calls Complete from one goroutine per
// platform.
type Client interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (*Completion, error)
	Name() string
	Configured() bool
}

// Sampling temperature shared by all backends. Bounded non-determinism: high
// enough for varied copy, low enough to keep the guidelines honored.
const samplingTemperature = 0.7
