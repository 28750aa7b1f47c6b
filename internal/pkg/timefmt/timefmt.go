// Package timefmt holds the display formatting shared by the approval flow and
// notification templates.
package timefmt

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// Clock12Layout is the canonical attendance time layout, e.g. "09:15 AM".
	Clock12Layout = "03:04 PM"
	// DateLayout is the storage layout of attendance dates.
	DateLayout = "2006-01-02"
	// HumanDateLayout is used in notification bodies, e.g. "01 Mar 2024".
	HumanDateLayout = "02 Jan 2006"
	// NotAvailable is substituted for missing optional values.
	NotAvailable = "N/A"
)

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseISO parses an ISO-8601 timestamp. Values without an offset are read in loc.
func ParseISO(value string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	value = strings.TrimSpace(value)
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Clock12 converts an ISO-8601 timestamp into "hh:mm AM/PM" in loc.
//
// Input that does not contain a literal "T", or that fails to parse as ISO-8601,
// is returned unchanged: callers also submit already-formatted display strings
// such as "09:15 AM" and those must survive verbatim.
func Clock12(value string, loc *time.Location) string {
	if !strings.Contains(value, "T") {
		return value
	}
	t, ok := ParseISO(value, loc)
	if !ok {
		return value
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(Clock12Layout)
}

// ParseClock12 parses an "hh:mm AM/PM" string into minutes since midnight.
func ParseClock12(value string) (int, bool) {
	value = strings.ToUpper(strings.TrimSpace(value))
	for _, layout := range []string{Clock12Layout, "3:04 PM", "03:04PM", "3:04PM", "15:04"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Hour()*60 + t.Minute(), true
		}
	}
	return 0, false
}

// DatePart returns the "YYYY-MM-DD" portion of a date or timestamp string.
// Values with no recognisable date prefix are returned trimmed.
func DatePart(value string) string {
	value = strings.TrimSpace(value)
	if i := strings.IndexAny(value, "T "); i > 0 {
		return value[:i]
	}
	return value
}

// HumanDate renders a date or timestamp as "02 Jan 2006". Empty input yields
// NotAvailable, unparseable input is returned unchanged.
func HumanDate(value string) string {
	if strings.TrimSpace(value) == "" {
		return NotAvailable
	}
	d, err := time.Parse(DateLayout, DatePart(value))
	if err != nil {
		return value
	}
	return d.Format(HumanDateLayout)
}

// HumanTime renders t as "02 Jan 2006" in loc, or NotAvailable for a nil or zero time.
func HumanTime(t *time.Time, loc *time.Location) string {
	if t == nil || t.IsZero() {
		return NotAvailable
	}
	if loc != nil {
		return t.In(loc).Format(HumanDateLayout)
	}
	return t.Format(HumanDateLayout)
}

// OrNA returns value, or NotAvailable when it is blank.
func OrNA(value string) string {
	if strings.TrimSpace(value) == "" {
		return NotAvailable
	}
	return value
}

// Currency formats amount as "<code> 1,500,000.00".
func Currency(amount decimal.Decimal, code string) string {
	fixed := amount.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	out := sign + b.String() + "." + frac
	if code == "" {
		return out
	}
	return code + " " + out
}
