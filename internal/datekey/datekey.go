// Package datekey derives the storage key of a day's checklist.
//
// A key is the namespace token followed by the calendar day as YYYY-MM-DD.
// The calendar day is read in the location carried by the time value, so
// 2024-03-01T23:30-05:00 and 2024-03-01T00:10+09:00 share a key.
// The same instant seen from two zones can therefore map to two keys
// (2024-03-02T04:30Z is 2024-03-01 in New York); pass times in the user's
// local zone.
package datekey

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Namespace prefixes every key so checklist values can share a medium with
// other data.
const Namespace = "@grocery_list_"

// Layout is the calendar day format used in keys and on the command line.
const Layout = "2006-01-02"

// ErrBadKey is returned by Key.Date for strings that were not built by For.
var ErrBadKey = errors.New("not a checklist key")

// ErrBadDate is returned by Parse for unrecognized input.
var ErrBadDate = errors.New("invalid date")

// Key identifies one day's checklist in the storage medium.
type Key string

func (k Key) String() string { return string(k) }

// For returns the key of the calendar day t falls on.
func For(t time.Time) Key {
	return Key(Namespace + t.Format(Layout))
}

// Date parses the day back out of a key, as midnight in loc.
func (k Key) Date(loc *time.Location) (time.Time, error) {
	s, ok := strings.CutPrefix(string(k), Namespace)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadKey, string(k))
	}
	d, err := time.ParseInLocation(Layout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadKey, string(k))
	}
	return d, nil
}

// Day truncates t to midnight of its calendar day, keeping its location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Shift moves a day by n calendar days. DST changes do not skew the result.
func Shift(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// SameDay reports whether a and b map to the same key.
func SameDay(a, b time.Time) bool {
	return For(a) == For(b)
}

// Parse reads user input: YYYY-MM-DD, or today/yesterday/tomorrow relative
// to now. The result is midnight in now's location.
func Parse(s string, now time.Time) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return Day(now), nil
	case "yesterday":
		return Shift(now, -1), nil
	case "tomorrow":
		return Shift(now, 1), nil
	}
	d, err := time.ParseInLocation(Layout, strings.TrimSpace(s), now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: want YYYY-MM-DD", ErrBadDate, s)
	}
	return d, nil
}
