package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockClient returns canned markdown and records every prompt. Used in
// offline mode and by tests.
type MockClient struct {
	mu      sync.Mutex
	prompts []string
	// Reply overrides the canned answer when set.
	Reply func(prompt string) (string, error)
}

func NewMockClient() *MockClient { return &MockClient{} }

func (m *MockClient) Name() string { return "mock" }

func (m *MockClient) Generate(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	n := len(m.prompts)
	m.mu.Unlock()

	if m.Reply != nil {
		return m.Reply(prompt)
	}
	first := strings.SplitN(strings.TrimSpace(prompt), "\n", 2)[0]
	return fmt.Sprintf("### Insight %d\n- Mock summary for: %s\n- Prompt size: %d bytes", n, first, len(prompt)), nil
}

// Prompts returns the prompts seen so far.
func (m *MockClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}
