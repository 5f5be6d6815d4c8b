package pricing

import (
	"strings"
	"time"
)

// IST is the civil timezone all calendar decisions are made in. Rates are
// published against the Indian civil day, so every date is normalized here
// before any weekday or day-of-month check.
var IST = time.FixedZone("IST", 5*3600+30*60)

// DateLayout is the display format for quoted pickup dates (dd/mm/yy).
const DateLayout = "02/01/06"

// Regime classifies a date for rate selection. Monday outranks
// weekend/month-end, which outrank a plain weekday.
type Regime int

const (
	RegimeWeekday Regime = iota
	RegimeSpecial        // weekend or month-end
	RegimeMonday
)

// IsWeekend reports whether the date falls on Friday, Saturday or Sunday in IST.
func IsWeekend(t time.Time) bool {
	switch t.In(IST).Weekday() {
	case time.Friday, time.Saturday, time.Sunday:
		return true
	}
	return false
}

// IsMonthEnd reports whether the date falls in the month-end window, which
// wraps the month boundary: the 25th onward plus the 1st and 2nd.
func IsMonthEnd(t time.Time) bool {
	d := t.In(IST).Day()
	return d >= 25 || d <= 2
}

// IsMonday reports whether the date is a Monday in IST.
func IsMonday(t time.Time) bool {
	return t.In(IST).Weekday() == time.Monday
}

// RegimeFor resolves the pricing regime for a date. A Monday that also sits
// inside a month-end window still prices as Monday.
func RegimeFor(t time.Time) Regime {
	switch {
	case IsMonday(t):
		return RegimeMonday
	case IsWeekend(t) || IsMonthEnd(t):
		return RegimeSpecial
	default:
		return RegimeWeekday
	}
}

// DayType builds the display label for a date, e.g. "Weekday Monthend (Wed)".
// The label is cosmetic only; pricing goes through RegimeFor.
func DayType(t time.Time) string {
	local := t.In(IST)
	label := "Weekday"
	if IsWeekend(local) {
		label = "Weekend"
	}
	if IsMonthEnd(local) {
		label += " Monthend"
	}
	return label + " (" + local.Weekday().String()[:3] + ")"
}

// FormatDate renders a date as dd/mm/yy in IST.
func FormatDate(t time.Time) string {
	return t.In(IST).Format(DateLayout)
}

// ParsePickupDate parses an ISO date, discarding any time component, and
// anchors it at midnight IST.
func ParsePickupDate(s string) (time.Time, error) {
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[:i]
	}
	return time.ParseInLocation("2006-01-02", strings.TrimSpace(s), IST)
}
