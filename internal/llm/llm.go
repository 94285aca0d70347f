// Package llm defines the text-generation capability the planner and
// summarizer depend on, plus the Gemini implementation. Callers receive a
// Generator at construction time; nothing in the codebase selects a provider
// globally.
package llm

import (
	"context"
	"errors"
)

// ErrQuotaExceeded marks a provider refusal due to exhausted quota or
// inactive billing. The API layer maps it to 402.
var ErrQuotaExceeded = errors.New("llm quota exhausted")

// Generator produces text from prompts. Implementations must be safe for
// concurrent use.
type Generator interface {
	// GenerateText returns the model's completion for a text prompt.
	GenerateText(ctx context.Context, prompt string) (string, error)

	// GenerateVision returns the model's completion for a prompt about an
	// image (raw bytes plus MIME type).
	GenerateVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}
