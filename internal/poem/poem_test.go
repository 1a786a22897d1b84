package poem

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"google.golang.org/genai"

	"github.com/gensys/chromapoem/internal/colour"
	"github.com/gensys/chromapoem/internal/snapshot"
)

var vivid = colour.Palette{
	Background: colour.RGB{R: 255},
	Circle1:    colour.RGB{G: 255},
	Circle2:    colour.RGB{B: 255},
	Circle3:    colour.RGB{R: 255, B: 128},
}

var dark = colour.Palette{
	Background: colour.RGB{R: 50},
	Circle1:    colour.RGB{G: 40},
	Circle2:    colour.RGB{R: 60, G: 60, B: 60},
	Circle3:    colour.RGB{R: 10, G: 10, B: 10},
}

func TestAnalyseTone(t *testing.T) {
	tests := []struct {
		name        string
		palette     colour.Palette
		intensity   string
		abstraction string
		quality     string
	}{
		{"default", colour.DefaultPalette(), "subdued", "clear and contemplative", "bright and energetic"},
		{"vivid", vivid, "intense", "highly abstract", "bright and energetic"},
		{"dark", dark, "moderate", "moderately abstract", "dark and introspective"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyseTone(tt.palette)
			if got.Intensity != tt.intensity || got.Abstraction != tt.abstraction || got.Quality != tt.quality {
				t.Errorf("AnalyseTone() = %+v, want %s / %s / %s", got, tt.intensity, tt.abstraction, tt.quality)
			}
		})
	}
}

func TestAnalyseToneStatistics(t *testing.T) {
	got := AnalyseTone(colour.DefaultPalette())
	if got.MeanSaturation != 29 {
		t.Errorf("MeanSaturation = %v, want 29", got.MeanSaturation)
	}
	if got.MeanBrightness != 96.75 {
		t.Errorf("MeanBrightness = %v, want 96.75", got.MeanBrightness)
	}
	// hues 58, 42, 48, 0
	if want := math.Sqrt(489); math.Abs(got.HueVariety-want) > 1e-9 {
		t.Errorf("HueVariety = %v, want %v", got.HueVariety, want)
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt, tone := Compose(colour.DefaultPalette())
	if tone.Intensity != "subdued" {
		t.Errorf("Compose tone = %+v", tone)
	}
	if !utf8.ValidString(prompt) {
		t.Fatal("prompt is not valid UTF-8")
	}

	for _, want := range []string{
		"Background: #FFF700 (Hue: 58°, Saturation: 100%, Brightness: 100%)",
		"Circle One: #E8E1D1 (Hue: 42°, Saturation: 10%, Brightness: 91%)",
		"Circle Three: #FFFFFF (Hue: 0°, Saturation: 0%, Brightness: 100%)",
		"- Emotional Intensity: subdued (saturation level: 29%)",
		"- Style: clear and contemplative (color variety: 22° hue variance)",
		"- Tone: bright and energetic (brightness: 97%)",
		"Return ONLY the poem",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if !strings.HasPrefix(prompt, "You are a concrete poet") {
		t.Error("prompt does not open with the poet instruction")
	}
}

func TestAnthropicGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("x-api-key = %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("anthropic-version = %q", r.Header.Get("anthropic-version"))
		}
		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Model != AnthropicModel || req.MaxTokens != 1024 || len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("request = %+v", req)
		}
		if req.Messages[0].Content == "fail" {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
			return
		}
		w.Write([]byte(`{"content":[{"type":"text","text":"  ○   light\n     ●"}]}`))
	}))
	defer srv.Close()

	a := NewAnthropic("test-key")
	a.Endpoint = srv.URL

	got, err := a.Generate(context.Background(), "write")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "  ○   light\n     ●" {
		t.Errorf("Generate() = %q", got)
	}

	_, err = a.Generate(context.Background(), "fail")
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("Generate() error = %v, want UpstreamError", err)
	}
	if ue.Status != http.StatusTooManyRequests || ue.Message != "slow down" {
		t.Errorf("UpstreamError = %+v", ue)
	}
}

func TestAnthropicWithoutKey(t *testing.T) {
	if _, err := NewAnthropic("").Generate(context.Background(), "x"); !errors.Is(err, ErrNoGenerator) {
		t.Errorf("Generate() error = %v, want ErrNoGenerator", err)
	}
}

func TestGenAIGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Path, "broken-model") {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"code":400,"message":"bad model","status":"INVALID_ARGUMENT"}}`))
			return
		}
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"◆ dawn ◆"}]}}]}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	g, err := NewGenAI(ctx, GenAIConfig{APIKey: "k", BaseURL: srv.URL, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("NewGenAI() error = %v", err)
	}
	got, err := g.Generate(ctx, "prompt")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "◆ dawn ◆" {
		t.Errorf("Generate() = %q", got)
	}

	broken, err := NewGenAI(ctx, GenAIConfig{APIKey: "k", BaseURL: srv.URL, HTTPClient: srv.Client(), Model: "broken-model"})
	if err != nil {
		t.Fatal(err)
	}
	_, err = broken.Generate(ctx, "prompt")
	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.Status != http.StatusBadRequest {
		t.Errorf("Generate() error = %v, want 400 UpstreamError", err)
	}
}

func TestAPIErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  genai.APIError
		want int
	}{
		{"numeric code", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT"}, http.StatusBadRequest},
		{"status name only", genai.APIError{Status: "RESOURCE_EXHAUSTED"}, http.StatusTooManyRequests},
		{"http status line", genai.APIError{Status: "503 Service Unavailable"}, http.StatusServiceUnavailable},
		{"nothing usable", genai.APIError{Message: "boom"}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := apiErrorStatus(tt.err); got != tt.want {
				t.Errorf("apiErrorStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUpstreamErrorHTTPStatus(t *testing.T) {
	tests := []struct {
		status int
		want   int
	}{
		{0, http.StatusBadGateway},
		{200, http.StatusBadGateway},
		{399, http.StatusBadGateway},
		{400, 400},
		{429, 429},
		{599, 599},
		{600, http.StatusBadGateway},
	}
	for _, tt := range tests {
		if got := (&UpstreamError{Status: tt.status}).HTTPStatus(); got != tt.want {
			t.Errorf("UpstreamError{Status: %d}.HTTPStatus() = %d, want %d", tt.status, got, tt.want)
		}
	}
}

func TestNewGenAIRequiresKey(t *testing.T) {
	if _, err := NewGenAI(context.Background(), GenAIConfig{}); err == nil {
		t.Error("NewGenAI() without key expected error")
	}
}

func TestClientGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != GeneratePath {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req Request
		json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		if req.Prompt == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorResponse{Error: "Prompt is required"})
			return
		}
		if req.ColorData == nil || req.ColorData.Background != (colour.RGB{R: 255, G: 247}) {
			t.Errorf("colorData = %+v", req.ColorData)
		}
		json.NewEncoder(w).Encode(Response{Poem: "a poem", Success: true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	got, err := c.GenerateFor(context.Background(), "p", snapshot.New(colour.DefaultPalette()))
	if err != nil || got != "a poem" {
		t.Fatalf("GenerateFor() = %q, %v", got, err)
	}

	_, err = c.Generate(context.Background(), "")
	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.Status != http.StatusBadRequest || ue.Message != "Prompt is required" {
		t.Errorf("Generate(\"\") error = %v", err)
	}
}

func TestClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 50*time.Millisecond)
	start := time.Now()
	if _, err := c.Generate(context.Background(), "p"); err == nil {
		t.Fatal("Generate() expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Generate() took %v, want it bounded by the timeout", elapsed)
	}
}
