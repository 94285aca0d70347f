// Package summarize produces summaries and actionable checklists from raw
// text or images via the injected LLM generator. Long inputs are summarized
// map-reduce style: per-chunk summaries first, then a single merge pass.
package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/me/flowplan/internal/llm"
)

// DefaultStyle is used when a request does not name a summary style.
const DefaultStyle = "bullet"

// Service runs summarization prompts against a Generator.
type Service struct {
	gen    llm.Generator
	logger *slog.Logger
}

// New creates a summarize Service. gen may be nil; every call then fails with
// a not-configured error.
func New(gen llm.Generator, logger *slog.Logger) *Service {
	return &Service{
		gen:    gen,
		logger: logger.With("component", "summarize"),
	}
}

// IsConfigured reports whether a generator is wired in.
func (s *Service) IsConfigured() bool {
	return s.gen != nil
}

// SummarizeText summarizes text of any length in the given style.
func (s *Service) SummarizeText(ctx context.Context, text, style string) (string, error) {
	if s.gen == nil {
		return "", fmt.Errorf("summarizer not configured")
	}
	if style == "" {
		style = DefaultStyle
	}

	chunks := SplitChunks(text, maxChunkChars)
	if len(chunks) == 0 {
		return "", nil
	}
	if len(chunks) == 1 {
		return s.summarizeChunk(ctx, chunks[0], style)
	}

	s.logger.Debug("long input", "chunks", len(chunks))
	partials := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		partial, err := s.summarizeChunk(ctx, chunk, style)
		if err != nil {
			return "", fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		partials = append(partials, partial)
	}
	return s.reduce(ctx, partials, style)
}

// SummarizeImage summarizes an image in the given style.
func (s *Service) SummarizeImage(ctx context.Context, image []byte, mimeType, style string) (string, error) {
	if s.gen == nil {
		return "", fmt.Errorf("summarizer not configured")
	}
	if style == "" {
		style = DefaultStyle
	}
	prompt := fmt.Sprintf("Summarize the image in %s points. Be accurate and concise.", style)
	return s.gen.GenerateVision(ctx, prompt, image, mimeType)
}

// ExtractTodos turns a note into a concise checklist of actionable items.
func (s *Service) ExtractTodos(ctx context.Context, text string) (string, error) {
	if s.gen == nil {
		return "", fmt.Errorf("summarizer not configured")
	}
	prompt := "From the following note, extract a concise checklist of actionable items. " +
		"Return bullet points only:\n\n" + text
	return s.gen.GenerateText(ctx, prompt)
}

func (s *Service) summarizeChunk(ctx context.Context, chunk, style string) (string, error) {
	prompt := fmt.Sprintf(
		"You are a precise summarizer.\nSummarize the following content in %s points with key facts preserved.\nAvoid hallucinations.\n\nContent:\n%s\n",
		style, chunk)
	return s.gen.GenerateText(ctx, prompt)
}

func (s *Service) reduce(ctx context.Context, partials []string, style string) (string, error) {
	prompt := fmt.Sprintf(
		"Merge these partial summaries into a single, non-redundant summary in %s points:\n%s",
		style, strings.Join(partials, "\n\n"))
	return s.gen.GenerateText(ctx, prompt)
}
