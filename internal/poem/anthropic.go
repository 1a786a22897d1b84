package poem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	httputil "github.com/gensys/chromapoem/internal/util/http"
)

const (
	// AnthropicEndpoint is the Messages API URL.
	AnthropicEndpoint = "https://api.anthropic.com/v1/messages"
	// AnthropicModel is the default model.
	AnthropicModel   = "claude-3-haiku-20240307"
	anthropicVersion = "2023-06-01"
	defaultMaxTokens = 1024
)

// Anthropic generates poems with the Anthropic Messages API.
type Anthropic struct {
	APIKey    string
	Endpoint  string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

var _ Generator = (*Anthropic)(nil)

// NewAnthropic returns a backend with the default endpoint and model.
func NewAnthropic(apiKey string) *Anthropic {
	return &Anthropic{
		APIKey:    apiKey,
		Endpoint:  AnthropicEndpoint,
		Model:     AnthropicModel,
		MaxTokens: defaultMaxTokens,
		Timeout:   60 * time.Second,
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type anthropicError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends prompt as a single user message and returns the first text
// block of the reply.
func (a *Anthropic) Generate(ctx context.Context, prompt string) (string, error) {
	if a.APIKey == "" {
		return "", ErrNoGenerator
	}

	req := anthropicRequest{
		Model:     a.Model,
		MaxTokens: a.MaxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	}
	opts := httputil.Options{
		Timeout: a.Timeout,
		Headers: map[string]string{
			"x-api-key":         a.APIKey,
			"anthropic-version": anthropicVersion,
		},
	}

	var resp anthropicResponse
	err := httputil.PostJSON(ctx, a.Endpoint, req, &resp, opts)
	var se *httputil.StatusError
	if errors.As(err, &se) {
		return "", &UpstreamError{Status: se.Code, Message: anthropicErrorMessage(se.Body)}
	}
	if err != nil {
		return "", fmt.Errorf("failed to call Anthropic API: %w", err)
	}

	for _, block := range resp.Content {
		if block.Type == "" || block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text in Anthropic response")
}

func anthropicErrorMessage(body []byte) string {
	var e anthropicError
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return strings.TrimSpace(string(body))
}
