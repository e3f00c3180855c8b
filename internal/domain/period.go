package domain

import (
	"fmt"
	"time"
)

// Period identifies one calendar month. Budgets and spend aggregation
// are anchored to whole months; a transaction's timestamp is reduced to
// its containing period.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// NewPeriod validates and builds a period
func NewPeriod(year, month int) (Period, error) {
	if year < 1900 || year > 2100 || month < 1 || month > 12 {
		return Period{}, ErrInvalidPeriod
	}
	return Period{Year: year, Month: month}, nil
}

// PeriodOf reduces a timestamp to its containing period in UTC
func PeriodOf(t time.Time) Period {
	utc := t.UTC()
	return Period{Year: utc.Year(), Month: int(utc.Month())}
}

// CurrentPeriod returns the period containing the current time
func CurrentPeriod() Period {
	return PeriodOf(time.Now())
}

// Start returns the first instant of the period in UTC
func (p Period) Start() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last instant of the period in UTC
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// Next returns the following period, rolling over year boundaries
func (p Period) Next() Period {
	if p.Month == 12 {
		return Period{Year: p.Year + 1, Month: 1}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Previous returns the preceding period, rolling over year boundaries
func (p Period) Previous() Period {
	if p.Month == 1 {
		return Period{Year: p.Year - 1, Month: 12}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

// Before reports whether p is strictly earlier than other
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

// String renders the period as YYYY-MM
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}
