package schedule

import (
	"testing"
	"time"
)

func TestParseWorkHours(t *testing.T) {
	tests := []struct {
		name string
		spec string
		want WorkHours
	}{
		{"standard", "09:00-17:00", WorkHours{540, 1020}},
		{"early start", "08:30-16:30", WorkHours{510, 990}},
		{"no dash", "09:00", DefaultWorkHours()},
		{"garbage", "bananas", DefaultWorkHours()},
		{"inverted", "17:00-09:00", DefaultWorkHours()},
		{"equal", "09:00-09:00", DefaultWorkHours()},
		{"hour out of range", "25:00-26:00", DefaultWorkHours()},
		{"minute out of range", "09:70-17:00", DefaultWorkHours()},
		{"spaces tolerated", "09:00 - 17:00", WorkHours{540, 1020}},
		{"empty", "", DefaultWorkHours()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseWorkHours(tt.spec)
			if got != tt.want {
				t.Errorf("ParseWorkHours(%q) = %v, want %v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestTryPlace(t *testing.T) {
	hours := DefaultWorkHours() // 09:00-17:00

	tests := []struct {
		name      string
		cursor    int
		dur       int // minutes
		wantStart int
		wantEnd   int
		wantOK    bool
	}{
		{"morning fits", 9 * 60, 60, 9 * 60, 10 * 60, true},
		{"ends exactly at lunch", 11 * 60, 60, 11 * 60, 12 * 60, true},
		{"crosses lunch relocates", 11 * 60, 120, 13 * 60, 15 * 60, true},
		{"starts at lunch relocates", 12 * 60, 60, 13 * 60, 14 * 60, true},
		{"starts mid-lunch relocates", 12*60 + 30, 60, 13 * 60, 14 * 60, true},
		{"afternoon fits", 13 * 60, 180, 13 * 60, 16 * 60, true},
		{"ends exactly at close", 13 * 60, 240, 13 * 60, 17 * 60, true},
		{"afternoon overflow", 16 * 60, 120, 0, 0, false},
		{"relocated overflow", 9 * 60, 300, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, ok := hours.TryPlace(tt.cursor, tt.dur)
			if ok != tt.wantOK {
				t.Fatalf("TryPlace(%d, %d) ok = %v, want %v", tt.cursor, tt.dur, ok, tt.wantOK)
			}
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("TryPlace(%d, %d) = (%d, %d), want (%d, %d)",
					tt.cursor, tt.dur, start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestNextWorkday(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"monday stays", "2025-01-06", "2025-01-06"},
		{"friday stays", "2025-01-10", "2025-01-10"},
		{"saturday to monday", "2025-01-11", "2025-01-13"},
		{"sunday to monday", "2025-01-12", "2025-01-13"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := time.Parse("2006-01-02", tt.in)
			if err != nil {
				t.Fatalf("parse %q: %v", tt.in, err)
			}
			if got := NextWorkday(d).Format("2006-01-02"); got != tt.want {
				t.Errorf("NextWorkday(%s) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestWorkHoursString(t *testing.T) {
	if got := DefaultWorkHours().String(); got != "09:00-17:00" {
		t.Errorf("String() = %q, want 09:00-17:00", got)
	}
	if got := (WorkHours{Start: 8*60 + 30, End: 16 * 60}).String(); got != "08:30-16:00" {
		t.Errorf("String() = %q, want 08:30-16:00", got)
	}
}
