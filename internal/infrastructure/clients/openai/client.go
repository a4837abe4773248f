package openai

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

	"github.com/medcoda/codepair/internal/domain/entities"
	"github.com/medcoda/codepair/internal/domain/providers"
	"github.com/medcoda/codepair/internal/infrastructure/observability"
	"github.com/medcoda/codepair/pkg/config"
	apperrors "github.com/medcoda/codepair/pkg/errors"
)

const defaultBaseURL = "https://api.openai.com/v1"

// fixedSeed pins provider-side sampling. Determinism is ultimately enforced by
// the verdict cache; the seed only reduces drift on cache-cold calls.
const fixedSeed = 42

// Client invokes the external generation service with zero sampling
// randomness and parses structured verdicts. Implements providers.VerdictProvider.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
}

// NewClient creates a new deterministic model client.
func NewClient(cfg *config.OpenAIConfig, metrics *observability.Metrics) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4.1-mini"
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &Client{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
	}, nil
}

// WithBaseURL overrides the service endpoint. Used by tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	return c
}

// PromptVersion returns the prompt policy identifier used for cache keying.
func (c *Client) PromptVersion() string {
	return PromptVersion
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatEnvelope struct {
	Choices []chatChoice `json:"choices"`
}

// Judge sends the assembled prompt and parses the structured verdict. A
// malformed response is retried exactly once; a second failure surfaces as a
// MODEL error with no fabricated verdict.
func (c *Client) Judge(ctx context.Context, req providers.VerdictRequest) (*entities.ModelVerdict, error) {
	if req.Diagnosis == nil || req.Procedure == nil {
		return nil, apperrors.NewInternalError("verdict request requires both codes", nil)
	}

	prompt := BuildPrompt(req)

	verdict, err := c.complete(ctx, prompt)
	if err == nil {
		return verdict, nil
	}
	if !isMalformed(err) {
		return nil, err
	}

	// Malformed structured output: one retry, then give up.
	verdict, retryErr := c.complete(ctx, prompt)
	if retryErr == nil {
		return verdict, nil
	}
	if isMalformed(retryErr) {
		return nil, apperrors.NewModelError("model returned malformed verdict twice", retryErr)
	}
	return nil, retryErr
}

var errMalformed = errors.New("malformed model response")

func isMalformed(err error) bool {
	return errors.Is(err, errMalformed)
}

func (c *Client) complete(ctx context.Context, prompt string) (*entities.ModelVerdict, error) {
	payload := map[string]interface{}{
		"model": c.model,
		"messages": []chatMessage{
			{Role: "user", Content: prompt},
		},
		"temperature":     0.0,
		"seed":            fixedSeed,
		"max_tokens":      800,
		"response_format": map[string]string{"type": "json_object"},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode model request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build model request", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		observability.RecordModelRequest(ctx, c.metrics, c.model, 0, time.Since(start), err)
		return nil, apperrors.NewModelError("model request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respErr := fmt.Errorf("status %d", resp.StatusCode)
		observability.RecordModelRequest(ctx, c.metrics, c.model, resp.StatusCode, time.Since(start), respErr)
		return nil, apperrors.NewModelError(fmt.Sprintf("model request failed with status %d", resp.StatusCode), respErr)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.RecordModelRequest(ctx, c.metrics, c.model, resp.StatusCode, time.Since(start), err)
		return nil, apperrors.NewModelError("failed to read model response", err)
	}

	verdict, err := parseVerdict(raw)
	observability.RecordModelRequest(ctx, c.metrics, c.model, resp.StatusCode, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return verdict, nil
}

func parseVerdict(raw []byte) (*entities.ModelVerdict, error) {
	var envelope chatEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if len(envelope.Choices) == 0 || envelope.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("%w: missing message content", errMalformed)
	}

	text := envelope.Choices[0].Message.Content

	// Clean Markdown code blocks if present
	cleaned := text
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	cleaned = strings.TrimSpace(cleaned)

	var verdict entities.ModelVerdict
	if err := json.Unmarshal([]byte(cleaned), &verdict); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if err := verdict.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}

	return &verdict, nil
}
