package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"2024-03-15", "2024-03-15T18:30:00Z"} {
		got, ok := ParseDate(s)
		if !ok {
			t.Fatalf("%s: expected ok", s)
		}
		if !got.Equal(want) {
			t.Fatalf("%s: got %v", s, got)
		}
	}
	if _, ok := ParseDate("15/03/2024"); ok {
		t.Fatalf("expected failure for unsupported layout")
	}
}

func TestParseDateDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	got := ParseDateDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestDefaultRange(t *testing.T) {
	now := time.Date(2025, 1, 31, 15, 4, 5, 0, time.UTC)
	start, end := DefaultRange(now, 730)
	if FormatDate(end) != "2025-01-31" {
		t.Fatalf("unexpected end %s", FormatDate(end))
	}
	if FormatDate(start) != "2023-02-01" {
		t.Fatalf("unexpected start %s", FormatDate(start))
	}
}
