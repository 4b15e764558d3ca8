package llm

import (
	"context"
	"fmt"
	"strings"
)

// Client abstracts the text-completion provider used for AI answers and
// document drafts. Implementations may be slow or unavailable; callers must
// treat failure as a degraded condition, not a request failure.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// StubClient is a deterministic placeholder until a real provider is wired.
// It echoes enough of the prompt to make responses traceable in tests.
type StubClient struct{}

// Complete returns a canned completion derived from the prompt.
func (StubClient) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	head := prompt
	if idx := strings.IndexByte(head, '\n'); idx > 0 {
		head = head[:idx]
	}
	if len(head) > 120 {
		head = head[:120]
	}
	return fmt.Sprintf("[stubbed completion] %s", strings.TrimSpace(head)), nil
}
