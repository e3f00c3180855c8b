package domain

import (
	"testing"
	"time"
)

func TestNewPeriod_Valid(t *testing.T) {
	p, err := NewPeriod(2026, 2)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if p.Year != 2026 || p.Month != 2 {
		t.Errorf("Expected 2026-02, got %s", p)
	}
}

func TestNewPeriod_Invalid(t *testing.T) {
	cases := []struct {
		name  string
		year  int
		month int
	}{
		{"month zero", 2026, 0},
		{"month thirteen", 2026, 13},
		{"negative month", 2026, -1},
		{"year too small", 1899, 6},
		{"year too large", 2101, 6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewPeriod(tc.year, tc.month); err != ErrInvalidPeriod {
				t.Errorf("Expected ErrInvalidPeriod, got %v", err)
			}
		})
	}
}

func TestPeriodOf_ReducesToUTCMonth(t *testing.T) {
	loc := time.FixedZone("UTC+13", 13*3600)
	// Local time is already January 1st, but UTC is still December 31st
	ts := time.Date(2026, 1, 1, 10, 0, 0, 0, loc)

	p := PeriodOf(ts)
	if p.Year != 2025 || p.Month != 12 {
		t.Errorf("Expected 2025-12, got %s", p)
	}
}

func TestPeriodStartEnd_CoverWholeMonth(t *testing.T) {
	p := Period{Year: 2026, Month: 2}

	start := p.Start()
	if !start.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected start %v", start)
	}

	end := p.End()
	if end.Month() != 2 || end.Day() != 28 {
		t.Errorf("Expected end inside February, got %v", end)
	}
	if !end.Before(p.Next().Start()) {
		t.Errorf("End %v should be before next period start", end)
	}
}

func TestPeriodEnd_LeapYear(t *testing.T) {
	p := Period{Year: 2028, Month: 2}
	if p.End().Day() != 29 {
		t.Errorf("Expected leap-year February to end on the 29th, got %v", p.End())
	}
}

func TestPeriodNextPrevious_YearRollover(t *testing.T) {
	dec := Period{Year: 2025, Month: 12}
	if next := dec.Next(); next.Year != 2026 || next.Month != 1 {
		t.Errorf("Expected 2026-01, got %s", next)
	}

	jan := Period{Year: 2026, Month: 1}
	if prev := jan.Previous(); prev.Year != 2025 || prev.Month != 12 {
		t.Errorf("Expected 2025-12, got %s", prev)
	}
}

func TestPeriodBefore(t *testing.T) {
	a := Period{Year: 2025, Month: 12}
	b := Period{Year: 2026, Month: 1}

	if !a.Before(b) {
		t.Error("Expected 2025-12 to be before 2026-01")
	}
	if b.Before(a) {
		t.Error("Expected 2026-01 not to be before 2025-12")
	}
	if a.Before(a) {
		t.Error("Expected a period not to be before itself")
	}
}

func TestPeriodString(t *testing.T) {
	p := Period{Year: 2026, Month: 3}
	if p.String() != "2026-03" {
		t.Errorf("Expected 2026-03, got %s", p)
	}
}
