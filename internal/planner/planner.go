// Package planner turns a free-text goal into an ordered list of subtask
// candidates with duration hints. The primary path asks an injected LLM
// generator for a JSON plan; the fallback path is a deterministic local
// splitter plus keyword-based duration heuristics. Planner failure is never
// fatal: a request always gets a candidate list.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/me/flowplan/internal/llm"
	"github.com/me/flowplan/pkg/model"
)

// FallbackNotes tags a response produced by the local heuristics.
const FallbackNotes = "fallback_local"

// Planner proposes subtasks for goals.
type Planner struct {
	gen    llm.Generator // nil means fallback-only
	logger *slog.Logger
}

// New creates a Planner. gen may be nil, in which case every plan takes the
// local fallback path.
func New(gen llm.Generator, logger *slog.Logger) *Planner {
	return &Planner{
		gen:    gen,
		logger: logger.With("component", "planner"),
	}
}

// HasGenerator reports whether an LLM generator is wired in.
func (p *Planner) HasGenerator() bool {
	return p.gen != nil
}

// PlanGoal breaks the requested goal into at most seven subtasks. Generator
// errors and malformed generator output degrade to the local fallback, except
// quota exhaustion, which surfaces so the API layer can report it.
func (p *Planner) PlanGoal(ctx context.Context, req model.PlanRequest) (*model.PlanResponse, error) {
	if p.gen == nil {
		return p.fallback(req), nil
	}

	raw, err := p.gen.GenerateText(ctx, buildPrompt(req))
	if err != nil {
		if errors.Is(err, llm.ErrQuotaExceeded) {
			return nil, err
		}
		p.logger.Warn("plan generation failed, using local fallback", "error", err)
		return p.fallback(req), nil
	}

	resp, err := parsePlan(raw)
	if err != nil {
		p.logger.Warn("plan output unparseable, using local fallback", "error", err)
		return p.fallback(req), nil
	}

	sanitize(resp)
	if len(resp.Subtasks) == 0 {
		return p.fallback(req), nil
	}
	return resp, nil
}

// fallback builds a plan from the local splitter and duration heuristics.
func (p *Planner) fallback(req model.PlanRequest) *model.PlanResponse {
	parts := SmartSplit(req.Title, req.Desc)
	subtasks := make([]model.Subtask, 0, len(parts))
	for i, text := range parts {
		subtasks = append(subtasks, model.Subtask{
			ID:       i + 1,
			Text:     text,
			Duration: float64(NormalizeHours(EstimateHours(text))),
		})
	}
	return &model.PlanResponse{Subtasks: subtasks, Notes: FallbackNotes}
}

func buildPrompt(req model.PlanRequest) string {
	return strings.Join([]string{
		"You are a planning and task-management assistant.",
		"Requirements:",
		"1) Break the goal into 3-7 SHORT subtasks.",
		"2) Estimate each duration in whole HOURS (1, 2, 3...).",
		"3) If a suitable date before the deadline can be inferred, add dateStr (yyyy-mm-dd); otherwise leave it out.",
		`4) Reply with JSON only, shaped as: { "subtasks": [{ "id"?, "text", "duration", "dateStr"? }], "notes"? }`,
		"",
		"Locale: " + req.Locale,
		fmt.Sprintf("Scope: %s (daily|weekly|monthly)", req.Scope),
		"Title: " + req.Title,
		"Description: " + req.Desc,
		"Due: " + req.Due,
	}, "\n")
}

// parsePlan extracts and decodes the JSON object in a generator reply. Models
// occasionally wrap the object in prose or code fences; everything outside the
// outermost braces is discarded.
func parsePlan(raw string) (*model.PlanResponse, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in reply")
	}
	var resp model.PlanResponse
	if err := json.Unmarshal([]byte(raw[start:end+1]), &resp); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return &resp, nil
}

// sanitize enforces the candidate contract on generator output: at most seven
// entries, trimmed text, 1-based default ids, whole-hour durations, and date
// hints either valid yyyy-mm-dd or empty.
func sanitize(resp *model.PlanResponse) {
	if len(resp.Subtasks) > maxSubtasks {
		resp.Subtasks = resp.Subtasks[:maxSubtasks]
	}
	for i := range resp.Subtasks {
		s := &resp.Subtasks[i]
		s.Text = strings.TrimSpace(s.Text)
		if s.ID == 0 {
			s.ID = i + 1
		}
		s.Duration = float64(NormalizeHours(s.Duration))
		s.DateStr = normalizeDate(s.DateStr)
	}
}

// normalizeDate reduces a date hint to yyyy-mm-dd, or empty when unusable.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}
