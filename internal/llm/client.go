// Package llm adapts the two external oracles (text style scoring, content
// generation) onto an OpenAI-compatible chat completions API.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tonifyerrors "tonify/internal/errors"
	"tonify/internal/logging"
)

// Config configures an oracle client.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	Retry   tonifyerrors.RetryConfig
	Headers map[string]string
}

// client speaks the chat completions wire format shared by both adapters.
type client struct {
	model      string
	apiKey     string
	baseURL    string
	headers    map[string]string
	httpClient *http.Client
	logger     logging.Logger
	retry      tonifyerrors.RetryConfig
}

func newClient(config Config, component string) *client {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}

	timeout := 60 * time.Second
	if config.Timeout > 0 {
		timeout = config.Timeout
	}

	retry := config.Retry
	if retry.MaxAttempts == 0 {
		retry = tonifyerrors.DefaultRetryConfig()
	}

	return &client{
		model:      config.Model,
		apiKey:     config.APIKey,
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		headers:    config.Headers,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewOracleLogger(component),
		retry:      retry,
	}
}

// complete issues one chat completion and returns the raw message content.
// The model is asked for a JSON object response; callers parse and validate.
func (c *client) complete(ctx context.Context, op, systemPrompt, userPrompt string) (string, error) {
	req := map[string]any{
		"model": c.model,
		"messages": []map[string]any{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"temperature":     0.2,
		"response_format": map[string]any{"type": "json_object"},
		"stream":          false,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.baseURL + "/chat/completions"
	c.logger.Debug("[%s] POST %s model=%s", op, endpoint, c.model)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug("[%s] HTTP request failed: %v", op, err)
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("[%s] status %d, %d bytes", op, resp.StatusCode, len(respBody))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("[%s] error body: %s", op, string(respBody))
		return "", tonifyerrors.FromHTTPStatus(op, resp.StatusCode, respBody)
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return "", tonifyerrors.NewMalformedError(fmt.Errorf("%s: decode response: %w", op, err), "")
	}

	if len(completion.Choices) == 0 {
		return "", tonifyerrors.NewTransientError(errors.New(op+": no choices in response"), "")
	}

	return completion.Choices[0].Message.Content, nil
}

// completeWithRetry wraps complete in the standard retry policy: transient
// failures back off and retry, quota short-circuits.
func (c *client) completeWithRetry(ctx context.Context, op, systemPrompt, userPrompt string) (string, error) {
	return tonifyerrors.RetryWithResultAndLog(ctx, c.retry, func(ctx context.Context) (string, error) {
		return c.complete(ctx, op, systemPrompt, userPrompt)
	}, c.logger)
}
