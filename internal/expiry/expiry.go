package expiry

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// formLayout is the day-first format staff type on the registration form.
const formLayout = "02/01/2006"

const (
	UrgentDays  = 5
	WarningDays = 30
)

type Tier string

const (
	TierExpired Tier = "expired"
	TierUrgent  Tier = "urgent"
	TierWarning Tier = "warning"
	TierHeld    Tier = "held"
)

const (
	ColorExpired = "red"
	ColorUrgent  = "orange"
	ColorWarning = "yellow"
	ColorHeld    = "green"
)

var ErrInvalidDate = errors.New("invalid date")

type Result struct {
	DaysRemaining int    `json:"days_remaining"`
	Tier          Tier   `json:"tier"`
	Label         string `json:"status"`
	Color         string `json:"color"`
}

// Tiers returns every tier in threshold order.
func Tiers() []Tier {
	return []Tier{TierExpired, TierUrgent, TierWarning, TierHeld}
}

func (t Tier) Color() string {
	switch t {
	case TierExpired:
		return ColorExpired
	case TierUrgent:
		return ColorUrgent
	case TierWarning:
		return ColorWarning
	default:
		return ColorHeld
	}
}

func ParseTier(s string) (Tier, bool) {
	for _, t := range Tiers() {
		if string(t) == strings.ToLower(strings.TrimSpace(s)) {
			return t, true
		}
	}
	return "", false
}

// ParseDate reads a calendar date as YYYY-MM-DD or DD/MM/YYYY and returns it at
// midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateLayout, formLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// FormatDate renders t's calendar date in the storage layout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysBetween counts whole calendar days from today to expiry. today is read in
// its own location before truncation so a late-evening now never rounds into the
// next day.
func DaysBetween(expiry, today time.Time) int {
	ey, em, ed := expiry.Date()
	ty, tm, td := today.Date()
	e := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	t := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(e.Sub(t).Hours() / 24)
}

// Classify maps an expiry date to its tier. The first matching threshold wins.
func Classify(expiry, now time.Time) Result {
	days := DaysBetween(expiry, now)
	switch {
	case days < 0:
		return result(days, TierExpired, fmt.Sprintf("EXPIRED (%d days)", -days))
	case days <= UrgentDays:
		return result(days, TierUrgent, fmt.Sprintf("expires in %d days", days))
	case days <= WarningDays:
		return result(days, TierWarning, fmt.Sprintf("expires in %d days", days))
	default:
		return result(days, TierHeld, fmt.Sprintf("held (%d days)", days))
	}
}

func result(days int, t Tier, label string) Result {
	return Result{DaysRemaining: days, Tier: t, Label: label, Color: t.Color()}
}

// ClassifyString parses a stored expiry date and classifies it.
func ClassifyString(expiry string, now time.Time) (Result, error) {
	d, err := ParseDate(expiry)
	if err != nil {
		return Result{}, err
	}
	return Classify(d, now), nil
}

// Clock yields the current time in a fixed location.
type Clock struct {
	Loc *time.Location
	Now func() time.Time
}

func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return Clock{Loc: loc, Now: time.Now}
}

// Today is the current instant in the clock's location.
func (c Clock) Today() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := c.Loc
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}
