package poem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gensys/chromapoem/internal/snapshot"
	httputil "github.com/gensys/chromapoem/internal/util/http"
)

// DefaultProxyURL is the local proxy server address.
const DefaultProxyURL = "http://localhost:3000"

// GeneratePath is the proxy endpoint for poem generation.
const GeneratePath = "/api/generate-poem"

// Request is the proxy request body.
type Request struct {
	Prompt    string             `json:"prompt"`
	ColorData *snapshot.Snapshot `json:"colorData,omitempty"`
}

// Response is the proxy success body.
type Response struct {
	Poem    string `json:"poem"`
	Success bool   `json:"success"`
}

// ErrorResponse is the proxy failure body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Client calls the poem proxy. Each call is a single attempt bounded by
// Timeout.
type Client struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient creates a proxy client. An empty baseURL uses DefaultProxyURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultProxyURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), Timeout: timeout}
}

// Generate asks the proxy for a poem. Proxy errors are returned as
// *UpstreamError with the proxy's status and error message.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.GenerateFor(ctx, prompt, nil)
}

// GenerateFor sends the prompt together with the palette it was built from.
func (c *Client) GenerateFor(ctx context.Context, prompt string, colorData *snapshot.Snapshot) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	var resp Response
	err := httputil.PostJSON(ctx, c.BaseURL+GeneratePath, Request{Prompt: prompt, ColorData: colorData}, &resp,
		httputil.Options{Timeout: c.Timeout})

	var se *httputil.StatusError
	if errors.As(err, &se) {
		var body ErrorResponse
		msg := strings.TrimSpace(string(se.Body))
		if json.Unmarshal(se.Body, &body) == nil && body.Error != "" {
			msg = body.Error
		}
		return "", &UpstreamError{Status: se.Code, Message: msg}
	}
	if err != nil {
		return "", fmt.Errorf("failed to reach poem server: %w", err)
	}
	if !resp.Success {
		return "", fmt.Errorf("poem server reported failure")
	}
	return resp.Poem, nil
}

var _ Generator = (*Client)(nil)
