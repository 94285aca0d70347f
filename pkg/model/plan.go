package model

import "time"

// Default scheduling parameters, applied when a request leaves them empty.
const (
	DefaultWorkHours = "09:00-17:00"
	DefaultTimezone  = "Asia/Ho_Chi_Minh"
)

// Scope controls which date range a goal is planned into.
type Scope string

const (
	ScopeDaily   Scope = "daily"
	ScopeWeekly  Scope = "weekly"
	ScopeMonthly Scope = "monthly"
)

// Subtask is a planned but not yet scheduled unit of work. The planner (LLM or
// local fallback) produces these; the scheduler consumes them in order.
type Subtask struct {
	ID       int     `json:"id"`
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`          // hours; may be fractional before normalization
	DateStr  string  `json:"dateStr,omitempty"` // optional yyyy-mm-dd placement hint
}

// PlacedEvent is a subtask pinned to a concrete work-calendar slot. Immutable
// once produced by the scheduler.
type PlacedEvent struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	DateStr  string `json:"dateStr"` // yyyy-mm-dd
	Start    string `json:"start"`   // HH:MM, 24-hour
	End      string `json:"end"`     // HH:MM, 24-hour
	Duration int    `json:"duration"` // whole hours
	Timezone string `json:"timezone"` // informational label, passed through verbatim
}

// PlanRequest asks the planner to break a goal into subtasks.
type PlanRequest struct {
	Title  string `json:"title"`
	Desc   string `json:"desc"`
	Due    string `json:"due,omitempty"` // yyyy-mm-dd
	Scope  Scope  `json:"scope"`
	Locale string `json:"locale,omitempty"`
}

// PlanResponse is the planner's output.
type PlanResponse struct {
	Subtasks []Subtask `json:"subtasks"`
	Notes    string    `json:"notes,omitempty"`
}

// ScheduleRequest asks the scheduler to place an ordered candidate list.
type ScheduleRequest struct {
	Tasks     []Subtask `json:"tasks"`
	StartDate string    `json:"start_date"`
	WorkHours string    `json:"work_hours"`
	Timezone  string    `json:"timezone"`
}

// ApplyDefaults fills empty scheduling parameters.
func (r *ScheduleRequest) ApplyDefaults() {
	if r.WorkHours == "" {
		r.WorkHours = DefaultWorkHours
	}
	if r.Timezone == "" {
		r.Timezone = DefaultTimezone
	}
	if r.StartDate == "" {
		r.StartDate = time.Now().Format("2006-01-02")
	}
}

// SavedPlan is a persisted goal together with its planned subtasks and the
// events the scheduler placed for them.
type SavedPlan struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Desc      string        `json:"desc,omitempty"`
	Scope     Scope         `json:"scope"`
	Timezone  string        `json:"timezone"`
	Subtasks  []Subtask     `json:"subtasks"`
	Events    []PlacedEvent `json:"events"`
	CreatedAt time.Time     `json:"created_at"`
}
