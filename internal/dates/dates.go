// Package dates parses and formats calendar dates against a single
// configurable textual pattern, the one the whole service shares for
// request input, response output and reminder emails.
package dates

import (
	"fmt"
	"strings"
	"time"
)

// Date is a calendar date with an explicit invalid marker. An invalid Date
// means "no date": unparseable input never surfaces as an error, callers
// check Valid instead.
type Date struct {
	Time  time.Time
	Valid bool
}

// Invalid is the marker returned for unparseable or empty input.
var Invalid = Date{}

// Codec parses and formats dates using one compiled pattern.
type Codec struct {
	pattern string
	layout  string
}

// patternTokens maps pattern tokens to Go reference-layout fragments.
// Ordered longest-first so DD is matched before D.
var patternTokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// NewCodec compiles a date pattern such as "D.M.YYYY" or "YYYY-MM-DD".
// An unrecognized letter in the pattern is an error.
func NewCodec(pattern string) (*Codec, error) {
	var layout strings.Builder

	rest := pattern
outer:
	for rest != "" {
		for _, t := range patternTokens {
			if strings.HasPrefix(rest, t.token) {
				layout.WriteString(t.layout)
				rest = rest[len(t.token):]
				continue outer
			}
		}
		c := rest[0]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			return nil, fmt.Errorf("unsupported token %q in date pattern %q", string(c), pattern)
		}
		layout.WriteByte(c)
		rest = rest[1:]
	}

	return &Codec{pattern: pattern, layout: layout.String()}, nil
}

// Pattern returns the textual pattern the codec was built from.
func (c *Codec) Pattern() string {
	return c.pattern
}

// Parse turns input into a Date. Empty or unparseable input yields Invalid.
func (c *Codec) Parse(input string) Date {
	if input == "" {
		return Invalid
	}
	t, err := time.Parse(c.layout, input)
	if err != nil {
		return Invalid
	}
	return Date{Time: t, Valid: true}
}

// FromTime wraps a nullable stored timestamp as a Date.
func FromTime(t *time.Time) Date {
	if t == nil || t.IsZero() {
		return Invalid
	}
	return Date{Time: *t, Valid: true}
}

// Format renders a time in the configured pattern.
func (c *Codec) Format(t time.Time) string {
	return t.Format(c.layout)
}

// FormatDate renders a Date, with the empty string for Invalid.
func (c *Codec) FormatDate(d Date) string {
	if !d.Valid {
		return ""
	}
	return c.Format(d.Time)
}

// Equal reports whether two Dates name the same calendar date.
// Two Invalid dates are equal; an Invalid date never equals a valid one.
func Equal(a, b Date) bool {
	if !a.Valid || !b.Valid {
		return a.Valid == b.Valid
	}
	ay, am, ad := a.Time.Date()
	by, bm, bd := b.Time.Date()
	return ay == by && am == bm && ad == bd
}

// DaysBetween returns the whole calendar days from b to a (a minus b).
// Positive when a is after b. Time-of-day is discarded on both sides.
func DaysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(au.Sub(bu).Hours() / 24)
}
