package planner

import "math"

// NormalizeHours coerces a raw duration hint (hours, possibly fractional,
// possibly absent) into a whole positive hour count: ceil(max(raw, 1)). The
// calendar grid is hour-granular, so sub-hour tasks are clamped up rather than
// producing zero-length blocks. Idempotent over its own output.
func NormalizeHours(raw float64) int {
	if math.IsNaN(raw) || raw < 1 {
		raw = 1
	}
	return int(math.Ceil(raw))
}
