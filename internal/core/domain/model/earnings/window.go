package earnings

import (
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/pkg/errs"
)

// Period names the calendar windows the agent can ask about.
type Period string

const (
	Day   Period = "today"
	Week  Period = "week"
	Month Period = "month"
)

// ParsePeriod accepts "today", "week" and "month", case-insensitively.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case Day, Week, Month:
		return p, nil
	}
	return "", errs.NewValueIsInvalidErrorWithCause("window", fmt.Errorf("%q is not one of today, week, month", s))
}

// Window is the half-open interval [From, To).
type Window struct {
	From time.Time
	To   time.Time
}

func NewWindow(from, to time.Time) (Window, error) {
	if !to.After(from) {
		return Window{}, errs.NewValueIsInvalidErrorWithCause("window", fmt.Errorf("end %s is not after start %s",
			to.Format(time.RFC3339), from.Format(time.RFC3339)))
	}
	return Window{From: from, To: to}, nil
}

// Today is the calendar day containing now, in now's location.
func Today(now time.Time) Window {
	from := midnight(now)
	return Window{From: from, To: from.AddDate(0, 0, 1)}
}

// ThisWeek is the Monday-based calendar week containing now.
func ThisWeek(now time.Time) Window {
	offset := (int(now.Weekday()) + 6) % 7
	from := midnight(now).AddDate(0, 0, -offset)
	return Window{From: from, To: from.AddDate(0, 0, 7)}
}

// ThisMonth is the calendar month containing now.
func ThisMonth(now time.Time) Window {
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return Window{From: from, To: from.AddDate(0, 1, 0)}
}

// For returns the calendar window of the given period containing now.
func For(p Period, now time.Time) Window {
	switch p {
	case Week:
		return ThisWeek(now)
	case Month:
		return ThisMonth(now)
	case Day:
	}
	return Today(now)
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
