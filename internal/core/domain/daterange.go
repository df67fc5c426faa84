package domain

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// DateRange is an inclusive calendar-day range. Zero bounds are open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// ParseDateRange parses two optional YYYY-MM-DD strings.
func ParseDateRange(from, to string) (DateRange, error) {
	var r DateRange
	var err error
	if from != "" {
		if r.From, err = time.Parse(DateLayout, from); err != nil {
			return DateRange{}, fmt.Errorf("%w: %q", ErrInvalidDate, from)
		}
	}
	if to != "" {
		if r.To, err = time.Parse(DateLayout, to); err != nil {
			return DateRange{}, fmt.Errorf("%w: %q", ErrInvalidDate, to)
		}
	}
	return r, nil
}

// ParseRequiredDateRange is ParseDateRange with both bounds mandatory.
func ParseRequiredDateRange(from, to string) (DateRange, error) {
	if from == "" || to == "" {
		return DateRange{}, fmt.Errorf("%w: start and end dates are required", ErrInvalidDate)
	}
	return ParseDateRange(from, to)
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// FromString and ToString render the bounds as YYYY-MM-DD ("" when open).
func (r DateRange) FromString() string {
	if r.From.IsZero() {
		return ""
	}
	return r.From.Format(DateLayout)
}

func (r DateRange) ToString() string {
	if r.To.IsZero() {
		return ""
	}
	return r.To.Format(DateLayout)
}

// EndOfDay returns the last instant of the upper bound, for queries against
// timestamp fields.
func (r DateRange) EndOfDay() time.Time {
	return r.To.Add(24*time.Hour - time.Nanosecond)
}

// MonthCollection names the per-month collection used by the B-grade and peel
// datasets, e.g. "sep_2025".
func MonthCollection(t time.Time) string {
	return fmt.Sprintf("%s_%d", monthAbbr[t.Month()-1], t.Year())
}

var monthAbbr = [12]string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}

// IsMonthAbbr reports whether s is a lowercase three-letter month name.
func IsMonthAbbr(s string) bool {
	for _, m := range monthAbbr {
		if m == s {
			return true
		}
	}
	return false
}
