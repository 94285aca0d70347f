package planner

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// maxSubtasks caps how many candidates one goal produces, whether the split
// came from the LLM or the local heuristics.
const maxSubtasks = 7

var (
	splitPattern = regexp.MustCompile(`\n|[•\-–]\s+|\d+\.\s+|[.;]`)

	explicitHours   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:h|hr|hrs|hour|hours)\b`)
	explicitMinutes = regexp.MustCompile(`(\d+)\s*(?:m|min|mins|minute|minutes)\b`)

	researchWords = regexp.MustCompile(`\b(?:research|investigate|read|design|plan|architecture|proposal)\b`)
	buildWords    = regexp.MustCompile(`\b(?:implement|code|build|train|integrate|refactor)\b`)
	writeWords    = regexp.MustCompile(`\b(?:write|draft|report|doc|document|slides|present)\b`)
	reviewWords   = regexp.MustCompile(`\b(?:test|review|lint|fix|debug)\b`)
)

// SmartSplit breaks a goal title and description into candidate subtask texts:
// line breaks, bullet markers, numbered-list markers and sentence terminators
// all delimit candidates. Exact duplicates are removed keeping first-seen
// order, and the result is capped at maxSubtasks. An empty split yields a
// generic three-step fallback so a goal always produces something actionable.
func SmartSplit(title, desc string) []string {
	raw := strings.ReplaceAll(desc+"\n"+title, "\r", "")

	seen := make(map[string]bool)
	var out []string
	for _, chunk := range splitPattern.Split(raw, -1) {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" || seen[chunk] {
			continue
		}
		seen[chunk] = true
		out = append(out, chunk)
	}

	if len(out) == 0 {
		subject := strings.TrimSpace(title)
		if subject == "" {
			subject = "the goal"
		}
		out = []string{
			fmt.Sprintf("Analyze the requirements for %q", subject),
			"Do the main work",
			"Summarize and write the report",
		}
	}
	if len(out) > maxSubtasks {
		out = out[:maxSubtasks]
	}
	return out
}

// EstimateHours guesses a duration for a subtask text. Explicit hour or minute
// mentions win (minutes convert to hours, floor 0.5h); otherwise the keyword
// family decides, defaulting to one hour. Deterministic and side-effect free.
func EstimateHours(text string) float64 {
	t := strings.ToLower(text)

	if m := explicitHours.FindStringSubmatch(t); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return max(0.5, v)
		}
	}
	if m := explicitMinutes.FindStringSubmatch(t); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return max(0.5, float64(n)/60)
		}
	}

	switch {
	case researchWords.MatchString(t):
		return 2
	case buildWords.MatchString(t):
		return 2
	case writeWords.MatchString(t):
		return 1.5
	case reviewWords.MatchString(t):
		return 1
	}
	return 1
}
