package scheduler

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrInvalidTestDate marks a malformed test_today_date override.
var ErrInvalidTestDate = errors.New("invalid test_today_date")

// DefaultTimeZone is used when an org carries no timezone of its own.
const DefaultTimeZone = "Europe/Dublin"

// Clock supplies "now". The scheduler takes it as a dependency so tests and
// the test_today_date override stay deterministic.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

var (
	testDateRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	testDateTimeRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}$`)
)

// ResolveToday returns the effective "today" for a scheduling run: the
// override parsed in loc when present, otherwise the clock reading in loc.
// Overrides are accepted only in strict YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS
// form; a malformed value fails the run instead of silently falling back to
// the wall clock.
func ResolveToday(clock Clock, override string, loc *time.Location) (time.Time, error) {
	override = strings.TrimSpace(override)
	if override == "" {
		return clock.Now().In(loc), nil
	}
	var layout string
	switch {
	case testDateRe.MatchString(override):
		layout = "2006-01-02"
	case testDateTimeRe.MatchString(override):
		layout = "2006-01-02T15:04:05"
	default:
		return time.Time{}, invalidTestDateErr(override)
	}
	t, err := time.ParseInLocation(layout, override, loc)
	if err != nil {
		return time.Time{}, invalidTestDateErr(override)
	}
	return t, nil
}

func invalidTestDateErr(val string) error {
	return fmt.Errorf("%w %q: it should be a date string e.g. YYYY-MM-DD, 2016-01-29", ErrInvalidTestDate, val)
}

// LoadLocation resolves the org timezone, defaulting when empty. An unknown
// zone name is a configuration error and aborts the run.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultTimeZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown org timezone %q: %w", name, err)
	}
	return loc, nil
}

// NormalizeLang maps underscore locale tags ("en_US") onto the hyphenated
// form mail templates expect.
func NormalizeLang(lang string) string {
	return strings.ReplaceAll(lang, "_", "-")
}
