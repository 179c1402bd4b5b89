/*
PURPOSE:
  Claude token counting via the Anthropic count-tokens API.
  The only network-backed backend; applies bounded waits and fails
  fast instead of hanging.

REQUIREMENTS:
  User-specified:
  - Exact Claude token counts when an API key is present.
  - Requesting this backend without credentials must fail with a clear
    "tokenizer unavailable", never fall back to another backend.

  Implementation-discovered:
  - Needs http.Client with timeouts.
  - Transient network errors deserve a small bounded retry loop.

ARCHITECTURE INTEGRATION:
  - Registered by: internal/tokenizer.NewRegistry
  - Uses: internal/config, internal/output

ERROR HANDLING:
  - Retries MaxRetries times with RetryDelay between attempts; the last
    error wins. 4xx responses do not retry (the request is wrong, not
    the network).

IMPLEMENTATION RULES:
  - Use net/http.
  - Enforce timeouts at both transport (headers) and request (context)
    level.
  - API key comes from ANTHROPIC_API_KEY; base URL is configurable so
    tests can point at a local server.

USAGE:
  a, err := tokenizer.NewAnthropic(cfg)
  n, err := a.Count(ctx, text)

SELF-HEALING INSTRUCTIONS:
  - If the API shape changes, update the request/response structs and
    anthropicVersion.

RELATED FILES:
  - internal/config/config.go
  - internal/tokenizer/tokenizer.go

MAINTENANCE:
  - Update anthropicVersion as the API evolves.
*/

package tokenizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aicac-project/tokenmeter/internal/config"
	"github.com/aicac-project/tokenmeter/internal/output"
)

// AnthropicName selects the Claude count-tokens backend.
const AnthropicName = "claude"

const (
	anthropicAPIKeyEnv = "ANTHROPIC_API_KEY"
	anthropicVersion   = "2023-06-01"
	countTokensPath    = "/v1/messages/count_tokens"
)

// Anthropic counts tokens by calling the Anthropic API.
type Anthropic struct {
	baseURL    string
	model      string
	apiKey     string
	maxRetries int
	retryDelay time.Duration
	timeout    time.Duration
	client     *http.Client
}

// NewAnthropic builds the backend from configuration. The returned
// error marks it unavailable (no API key); the Counter is still
// non-nil so the registry can report its name.
func NewAnthropic(cfg *config.Config) (*Anthropic, error) {
	a := &Anthropic{
		baseURL:    strings.TrimRight(cfg.AnthropicBaseURL, "/"),
		model:      cfg.AnthropicModel,
		apiKey:     os.Getenv(anthropicAPIKeyEnv),
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		timeout:    cfg.RequestTimeout,
	}

	// ResponseHeaderTimeout covers the wait for the first response
	// byte; the overall request deadline is applied per call.
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = cfg.RequestTimeout
	a.client = &http.Client{
		Transport: transport,
		Timeout:   cfg.RequestTimeout,
	}

	if a.apiKey == "" {
		return a, fmt.Errorf("%s not set", anthropicAPIKeyEnv)
	}
	return a, nil
}

// Name implements Counter.
func (a *Anthropic) Name() string { return AnthropicName }

// Count implements Counter.
func (a *Anthropic) Count(ctx context.Context, text string) (int, error) {
	if a.apiKey == "" {
		return 0, fmt.Errorf("%w: %s (%s not set)", ErrUnavailable, AnthropicName, anthropicAPIKeyEnv)
	}
	if text == "" {
		return 0, nil
	}

	reqBody, err := json.Marshal(map[string]interface{}{
		"model": a.model,
		"messages": []map[string]string{
			{"role": "user", "content": text},
		},
	})
	if err != nil {
		return 0, err
	}

	// Retry loop
	var lastErr error
	for i := 0; i < a.maxRetries; i++ {
		if i > 0 {
			time.Sleep(a.retryDelay)
			output.Logger.Info("Retrying count-tokens request...", "attempt", i+1)
		}

		count, retryable, err := a.doCount(ctx, reqBody)
		if err == nil {
			return count, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}

	return 0, lastErr
}

func (a *Anthropic) doCount(ctx context.Context, reqBody []byte) (int, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+countTokensPath, bytes.NewReader(reqBody))
	if err != nil {
		return 0, false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.client.Do(req)
	if err != nil {
		if strings.Contains(err.Error(), "awaiting headers") {
			return 0, true, fmt.Errorf("Anthropic header timeout: %w", err)
		}
		return 0, true, fmt.Errorf("network/connection error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, true, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// Client errors won't improve on retry; server errors might.
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return 0, retryable, fmt.Errorf("Anthropic API error (%s): %s", resp.Status, string(body))
	}

	var data struct {
		InputTokens int `json:"input_tokens"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return 0, false, fmt.Errorf("Anthropic returned invalid JSON: %w (Body: %s)", err, string(body))
	}
	if data.InputTokens < 0 {
		return 0, false, fmt.Errorf("Anthropic returned negative token count: %d", data.InputTokens)
	}

	return data.InputTokens, false, nil
}
