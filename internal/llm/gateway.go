package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"outlet-insights-go/internal/logger"
)

// GatewayClient talks to an OpenAI-compatible chat completions endpoint.
// Transport errors and 5xx are retried with exponential backoff; 4xx are
// not.
type GatewayClient struct {
	url          string
	apiKey       string
	model        string
	httpClient   *http.Client
	maxRetryTime time.Duration
}

func NewGatewayClient(url, apiKey, model string, timeout, maxRetryTime time.Duration) *GatewayClient {
	return &GatewayClient{
		url:          url,
		apiKey:       apiKey,
		model:        model,
		httpClient:   &http.Client{Timeout: timeout},
		maxRetryTime: maxRetryTime,
	}
}

func (g *GatewayClient) Name() string { return "gateway:" + g.model }

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("llm gateway returned %d: %s", e.code, e.body)
}

func (g *GatewayClient) Generate(ctx context.Context, prompt string) (string, error) {
	log := logger.Component("llm.gateway").WithField("model", g.model)

	reqBody := map[string]any{
		"model": g.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": 0.2,
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encode llm request: %w", err)
	}
	log.WithField("payload_len", len(data)).Debug("llm request")

	var content string
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(data))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := g.httpClient.Do(req)
		if err != nil {
			log.WithError(err).Warn("llm request failed")
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		log.WithField("http_status", resp.StatusCode).Debug("llm raw response received")

		if resp.StatusCode >= 400 {
			serr := &statusError{code: resp.StatusCode, body: truncate(string(body), 300)}
			if resp.StatusCode < 500 {
				return backoff.Permanent(serr)
			}
			return serr
		}
		text, err := contentFromChoices(body)
		if err != nil {
			return backoff.Permanent(err)
		}
		content = text
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = g.maxRetryTime
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return "", fmt.Errorf("llm generate: %w", err)
	}
	return content, nil
}

// contentFromChoices reads choices[0].message.content. A response with no
// choices is empty content, not an error.
func contentFromChoices(body []byte) (string, error) {
	var resp struct {
		Choices []struct {
			Message struct {
				Content *string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode llm response: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == nil {
		return "", nil
	}
	return *resp.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
