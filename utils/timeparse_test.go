package utils

import (
	"testing"
	"time"
)

func TestParseInstant_Layouts(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	want := time.Date(2024, 6, 1, 10, 0, 0, 0, seoul)

	for _, in := range []string{
		"2024-06-01T10:00",
		"2024-06-01T10:00:00",
		"2024-06-01 10:00",
		" 2024-06-01 10:00:00 ",
		"2024-06-01T10:00:00+09:00",
		"2024-06-01T01:00:00Z",
	} {
		got, err := ParseInstant(in, seoul)
		if err != nil {
			t.Fatalf("ParseInstant(%q) error: %v", in, err)
		}
		if !got.Equal(want) {
			t.Fatalf("ParseInstant(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseInstant_Rejects(t *testing.T) {
	for _, in := range []string{"", "tomorrow", "2024-13-01T10:00"} {
		if _, err := ParseInstant(in, time.UTC); err == nil {
			t.Fatalf("ParseInstant(%q) expected error", in)
		}
	}
}

func TestParseDate(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)
	got, err := ParseDate("2024-06-08", loc)
	if err != nil {
		t.Fatalf("ParseDate error: %v", err)
	}
	if want := time.Date(2024, 6, 8, 0, 0, 0, 0, loc); !got.Equal(want) {
		t.Fatalf("ParseDate = %v, want %v", got, want)
	}

	got, err = ParseDate("2024-06-08T23:30:00Z", loc)
	if err != nil {
		t.Fatalf("ParseDate(instant) error: %v", err)
	}
	if want := time.Date(2024, 6, 9, 0, 0, 0, 0, loc); !got.Equal(want) {
		t.Fatalf("ParseDate(instant) = %v, want %v", got, want)
	}
}

func TestAtDate_KeepsClock(t *testing.T) {
	loc := time.UTC
	day := time.Date(2024, 7, 15, 0, 0, 0, 0, loc)
	clock := time.Date(2024, 6, 1, 18, 30, 0, 0, loc)
	if got, want := AtDate(day, clock, loc), time.Date(2024, 7, 15, 18, 30, 0, 0, loc); !got.Equal(want) {
		t.Fatalf("AtDate = %v, want %v", got, want)
	}
}
