// Package llm is the text-generation transport behind the insight
// orchestrator.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"outlet-insights-go/internal/config"
)

var ErrNotConfigured = errors.New("llm client not configured")

// Client turns a prompt into text. An empty string with a nil error means
// the model returned no content.
type Client interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// New builds the client selected by the config. Offline mode always uses
// the mock.
func New(ctx context.Context, cfg config.LLMConfig, offline bool) (Client, error) {
	if offline {
		return NewMockClient(), nil
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	switch strings.ToLower(cfg.Provider) {
	case "mock":
		return NewMockClient(), nil
	case "gateway":
		if cfg.GatewayURL == "" || cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: gateway needs LLM_GATEWAY_URL and LLM_API_KEY", ErrNotConfigured)
		}
		return NewGatewayClient(cfg.GatewayURL, cfg.APIKey, cfg.Model, timeout, time.Duration(cfg.MaxRetrySecs)*time.Second), nil
	case "gemini", "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: gemini needs LLM_API_KEY or GEMINI_API_KEY", ErrNotConfigured)
		}
		g, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model, timeout)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	return nil, fmt.Errorf("%w: unknown provider %q", ErrNotConfigured, cfg.Provider)
}
