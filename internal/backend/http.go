package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the OpenAI-compatible API root used when no override
// is configured.
const DefaultBaseURL = "https://api.openai.com/v1"

// familyParams captures per-model-family request quirks. The reasoning
// family rejects custom sampling temperatures and names its length cap
// max_completion_tokens instead of max_tokens.
type familyParams struct {
	fixedTemperature   float64
	hasFixedTemp       bool
	defaultTemperature float64
	tokenField         string
	defaultMaxTokens   int
}

// paramsFor returns the parameter table entry for a model identifier.
func paramsFor(model string) familyParams {
	if isReasoningModel(model) {
		return familyParams{
			fixedTemperature: 1,
			hasFixedTemp:     true,
			tokenField:       "max_completion_tokens",
			defaultMaxTokens: 4096,
		}
	}
	return familyParams{
		defaultTemperature: 0.2,
		tokenField:         "max_tokens",
		defaultMaxTokens:   4096,
	}
}

// isReasoningModel reports whether the id names an o-series reasoning
// model (o1, o3-mini, o4-mini, ...).
func isReasoningModel(model string) bool {
	if len(model) < 2 || model[0] != 'o' {
		return false
	}
	return model[1] >= '0' && model[1] <= '9'
}

// HTTP sends prompts to an OpenAI-style chat completion endpoint.
type HTTP struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *zap.Logger
}

// NewHTTP creates an HTTP transport. baseURL may be empty to use the
// public API. The per-attempt timeout is enforced by the caller's
// context, so the client itself carries no timeout.
func NewHTTP(baseURL, apiKey string, log *zap.Logger) *HTTP {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTP{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{},
		log:     log,
	}
}

func (h *HTTP) Name() string { return "http" }

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Invoke issues one completion request and returns the generated text.
func (h *HTTP) Invoke(ctx context.Context, prompt, model string, opts Options) (string, error) {
	body, err := json.Marshal(h.buildBody(prompt, model, opts))
	if err != nil {
		return "", Wrap(KindTransport, err, "encoding request body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		h.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", Wrap(KindTransport, err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.apiKey)

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr == context.DeadlineExceeded {
			return "", Wrap(KindTimeout, ctxErr, "completion request timed out")
		} else if ctxErr != nil {
			return "", ctxErr
		}
		return "", Wrap(KindTransport, err, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", Wrap(KindTransport, err, "reading response body")
	}

	h.log.Debug("completion response",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", Errorf(KindRateLimited, "API throttled the request (status 429)")
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", Errorf(KindTransport, "unexpected status %d: %s",
			resp.StatusCode, truncate(string(payload), 200))
	}

	var chat chatResponse
	if err := json.Unmarshal(payload, &chat); err != nil {
		return "", Wrap(KindInvalidResponse, err, "invalid JSON in completion response")
	}
	if len(chat.Choices) == 0 {
		return "", Errorf(KindInvalidResponse, "completion response contained no choices")
	}
	return strings.TrimLeft(chat.Choices[0].Message.Content, "\n"), nil
}

// buildBody assembles the request body, applying the model family's
// parameter quirks.
func (h *HTTP) buildBody(prompt, model string, opts Options) map[string]any {
	fam := paramsFor(model)

	body := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"stream": false,
	}

	switch {
	case fam.hasFixedTemp:
		body["temperature"] = fam.fixedTemperature
	case opts.Temperature != nil:
		body["temperature"] = *opts.Temperature
	default:
		body["temperature"] = fam.defaultTemperature
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = fam.defaultMaxTokens
	}
	body[fam.tokenField] = maxTokens

	return body
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s... (%d bytes)", s[:n], len(s))
}
