package poem

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"google.golang.org/genai"
)

// DefaultGenAIModel is the Gemini model used when none is set.
const DefaultGenAIModel = "gemini-2.5-flash"

// GenAIConfig configures the Google Gen AI backend.
type GenAIConfig struct {
	// Backend is "gemini-api" (default) or "vertex-ai".
	Backend  string
	APIKey   string
	Project  string
	Location string
	Model    string
	// BaseURL overrides the service endpoint.
	BaseURL    string
	HTTPClient *http.Client
}

// GenAI generates poems with Gemini through google.golang.org/genai.
type GenAI struct {
	client *genai.Client
	model  string
}

var _ Generator = (*GenAI)(nil)

// NewGenAI creates a Gen AI backend. The Gemini API backend requires an API
// key; Vertex AI uses application default credentials.
func NewGenAI(ctx context.Context, cfg GenAIConfig) (*GenAI, error) {
	clientConfig := &genai.ClientConfig{
		HTTPClient: cfg.HTTPClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: cfg.BaseURL,
		},
	}

	if cfg.Backend == "vertex-ai" {
		clientConfig.Backend = genai.BackendVertexAI
		clientConfig.Project = cfg.Project
		clientConfig.Location = cfg.Location
	} else {
		clientConfig.Backend = genai.BackendGeminiAPI
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY is required for the gemini-api backend")
		}
		clientConfig.APIKey = cfg.APIKey
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gen AI client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultGenAIModel
	}
	return &GenAI{client: client, model: model}, nil
}

// Generate returns the text of the first candidate.
func (g *GenAI) Generate(ctx context.Context, prompt string) (string, error) {
	genConfig := &genai.GenerateContentConfig{
		MaxOutputTokens: defaultMaxTokens,
	}

	response, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), genConfig)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &UpstreamError{Status: apiErrorStatus(apiErr), Message: apiErr.Message}
		}
		return "", fmt.Errorf("poem generation failed: %w", err)
	}

	text := response.Text()
	if text == "" {
		return "", fmt.Errorf("no text in Gen AI response")
	}
	return text, nil
}

// grpcHTTPStatus maps the canonical status names Google APIs put in error
// bodies to HTTP codes.
var grpcHTTPStatus = map[string]int{
	"INVALID_ARGUMENT":    http.StatusBadRequest,
	"FAILED_PRECONDITION": http.StatusBadRequest,
	"OUT_OF_RANGE":        http.StatusBadRequest,
	"UNAUTHENTICATED":     http.StatusUnauthorized,
	"PERMISSION_DENIED":   http.StatusForbidden,
	"NOT_FOUND":           http.StatusNotFound,
	"ALREADY_EXISTS":      http.StatusConflict,
	"ABORTED":             http.StatusConflict,
	"RESOURCE_EXHAUSTED":  http.StatusTooManyRequests,
	"CANCELLED":           499,
	"INTERNAL":            http.StatusInternalServerError,
	"UNKNOWN":             http.StatusInternalServerError,
	"DATA_LOSS":           http.StatusInternalServerError,
	"UNIMPLEMENTED":       http.StatusNotImplemented,
	"UNAVAILABLE":         http.StatusServiceUnavailable,
	"DEADLINE_EXCEEDED":   http.StatusGatewayTimeout,
}

// apiErrorStatus returns the HTTP status of a Gen AI error. Error bodies
// without a numeric code only carry the status name, and the client drops
// the response status in that case.
func apiErrorStatus(apiErr genai.APIError) int {
	if apiErr.Code != 0 {
		return apiErr.Code
	}
	if code, ok := grpcHTTPStatus[apiErr.Status]; ok {
		return code
	}
	if code, _, ok := strings.Cut(apiErr.Status, " "); ok {
		if n, err := strconv.Atoi(code); err == nil {
			return n
		}
	}
	return http.StatusBadGateway
}
