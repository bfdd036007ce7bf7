package scheduler

import (
	"errors"
	"testing"
	"time"
)

func TestResolveTodayOverride(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	clock := FixedClock{T: time.Date(2030, time.January, 1, 12, 0, 0, 0, time.UTC)}

	got, err := ResolveToday(clock, "2016-01-29", loc)
	if err != nil {
		t.Fatalf("ResolveToday: %v", err)
	}
	want := time.Date(2016, time.January, 29, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	got, err = ResolveToday(clock, "2016-01-29T13:45:00", loc)
	if err != nil {
		t.Fatalf("ResolveToday datetime: %v", err)
	}
	want = time.Date(2016, time.January, 29, 13, 45, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestResolveTodayEmptyUsesClock(t *testing.T) {
	now := time.Date(2024, time.July, 4, 9, 30, 0, 0, time.UTC)
	got, err := ResolveToday(FixedClock{T: now}, "", time.UTC)
	if err != nil {
		t.Fatalf("ResolveToday: %v", err)
	}
	if !got.Equal(now) {
		t.Fatalf("got %v, want clock time %v", got, now)
	}
}

func TestResolveTodayRejectsMalformedOverride(t *testing.T) {
	for _, bad := range []string{
		"29-01-2016",
		"2016/01/29",
		"2016-01-29T13:45",
		"yesterday",
		"2016-13-45",
	} {
		_, err := ResolveToday(SystemClock{}, bad, time.UTC)
		if err == nil {
			t.Fatalf("ResolveToday(%q) accepted, want error", bad)
		}
		if !errors.Is(err, ErrInvalidTestDate) {
			t.Fatalf("ResolveToday(%q) error = %v, want ErrInvalidTestDate", bad, err)
		}
	}
}

func TestLoadLocationDefaults(t *testing.T) {
	loc, err := LoadLocation("")
	if err != nil {
		t.Fatalf("LoadLocation(empty): %v", err)
	}
	if loc.String() != DefaultTimeZone {
		t.Fatalf("got %q, want %q", loc.String(), DefaultTimeZone)
	}
	if _, err := LoadLocation("Not/AZone"); err == nil {
		t.Fatal("LoadLocation accepted an unknown zone")
	}
}

func TestNormalizeLang(t *testing.T) {
	if got := NormalizeLang("en_US"); got != "en-US" {
		t.Fatalf("got %q, want en-US", got)
	}
	if got := NormalizeLang("de"); got != "de" {
		t.Fatalf("got %q, want de", got)
	}
}
