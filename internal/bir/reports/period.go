// Package reports aggregates sales and payroll records into BIR reports and
// forms for a calendar period.
package reports

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidPeriod indicates an out-of-range year, quarter or month.
	ErrInvalidPeriod = errors.New("reports: invalid period")
	// ErrMonthlyPeriodRequired indicates a monthly form was asked for a
	// quarter or year.
	ErrMonthlyPeriodRequired = errors.New("reports: monthly period required")
)

// Period is a calendar month, quarter or year. At most one of Month and
// Quarter is set; neither set means the whole year.
type Period struct {
	Year    int            `json:"year"`
	Quarter int            `json:"quarter,omitempty"`
	Month   int            `json:"month,omitempty"`
	Loc     *time.Location `json:"-"`
}

// MonthPeriod is shorthand for a monthly period.
func MonthPeriod(year int, month time.Month) Period {
	return Period{Year: year, Month: int(month)}
}

// Validate checks ranges.
func (p Period) Validate() error {
	switch {
	case p.Year < 1 || p.Year > 9999:
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, p.Year)
	case p.Month < 0 || p.Month > 12:
		return fmt.Errorf("%w: month %d", ErrInvalidPeriod, p.Month)
	case p.Quarter < 0 || p.Quarter > 4:
		return fmt.Errorf("%w: quarter %d", ErrInvalidPeriod, p.Quarter)
	case p.Month != 0 && p.Quarter != 0:
		return fmt.Errorf("%w: month and quarter are exclusive", ErrInvalidPeriod)
	}
	return nil
}

// IsMonthly reports whether the period is a single month.
func (p Period) IsMonthly() bool {
	return p.Month != 0
}

// Contains matches t against the period by calendar fields, evaluated in Loc
// when set.
func (p Period) Contains(t time.Time) bool {
	if p.Loc != nil {
		t = t.In(p.Loc)
	}
	if t.Year() != p.Year {
		return false
	}
	switch {
	case p.Month != 0:
		return int(t.Month()) == p.Month
	case p.Quarter != 0:
		return (int(t.Month())-1)/3+1 == p.Quarter
	}
	return true
}

// Bounds returns the half-open [from, to) interval covered by the period.
func (p Period) Bounds() (time.Time, time.Time) {
	loc := p.Loc
	if loc == nil {
		loc = time.UTC
	}
	switch {
	case p.Month != 0:
		from := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, loc)
		return from, from.AddDate(0, 1, 0)
	case p.Quarter != 0:
		from := time.Date(p.Year, time.Month((p.Quarter-1)*3+1), 1, 0, 0, 0, 0, loc)
		return from, from.AddDate(0, 3, 0)
	}
	from := time.Date(p.Year, time.January, 1, 0, 0, 0, 0, loc)
	return from, from.AddDate(1, 0, 0)
}

// String renders 2024-03, 2024-Q1 or 2024.
func (p Period) String() string {
	switch {
	case p.Month != 0:
		return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
	case p.Quarter != 0:
		return fmt.Sprintf("%04d-Q%d", p.Year, p.Quarter)
	}
	return fmt.Sprintf("%04d", p.Year)
}

// ParsePeriod is the inverse of Period.String.
func ParsePeriod(s string) (Period, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	p := Period{Year: year}
	switch len(parts) {
	case 1:
	case 2:
		if strings.HasPrefix(strings.ToUpper(parts[1]), "Q") {
			p.Quarter, err = strconv.Atoi(parts[1][1:])
		} else {
			p.Month, err = strconv.Atoi(parts[1])
		}
		if err != nil {
			return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
		}
	default:
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}
