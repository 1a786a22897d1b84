package poem

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gensys/chromapoem/internal/colour"
)

// ErrNoGenerator is returned when no backend is configured.
var ErrNoGenerator = errors.New("no poem generator configured")

// Generator produces poem text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// UpstreamError is a failure reported by the text generation service. Status
// is the HTTP status the service answered with.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream returned status %d", e.Status)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.Status, e.Message)
}

// HTTPStatus is the status to relay to a caller. Anything outside the
// 4xx/5xx range becomes 502 Bad Gateway.
func (e *UpstreamError) HTTPStatus() int {
	if e.Status < 400 || e.Status > 599 {
		return http.StatusBadGateway
	}
	return e.Status
}

// Compose analyses the palette tone and builds its prompt.
func Compose(p colour.Palette) (string, Tone) {
	tone := AnalyseTone(p)
	return BuildPrompt(p, tone), tone
}
