package dates_test

import (
	"testing"
	"time"

	"taskify/app/internal/dates"
)

func TestLocalMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	in := time.Date(2025, 3, 14, 15, 4, 33, 500, loc)

	got := dates.LocalMidnight(in)

	want := time.Date(2025, 3, 14, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("LocalMidnight(%v) = %v, want %v", in, got, want)
	}

	if got.Location() != loc {
		t.Errorf("Expected location %v to be preserved, got %v", loc, got.Location())
	}
}

func TestNormalize_Nil(t *testing.T) {
	if got := dates.Normalize(nil); got != nil {
		t.Errorf("Normalize(nil) = %v, want nil", got)
	}
}

func TestNormalize_StripsTimeOfDay(t *testing.T) {
	in := time.Date(2025, 7, 1, 23, 59, 59, 0, time.Local)

	got := dates.Normalize(&in)

	if got == nil {
		t.Fatal("Normalize returned nil for non-nil input")
	}
	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 {
		t.Errorf("Expected midnight, got %v", got)
	}
	if got.Day() != 1 || got.Month() != time.July {
		t.Errorf("Expected same calendar day, got %v", got)
	}
}

func TestSameCalendarDay(t *testing.T) {
	tests := []struct {
		name string
		a    time.Time
		b    time.Time
		want bool
	}{
		{
			"same day different hours",
			time.Date(2025, 5, 10, 1, 0, 0, 0, time.Local),
			time.Date(2025, 5, 10, 23, 0, 0, 0, time.Local),
			true,
		},
		{
			"consecutive days within 24h",
			time.Date(2025, 5, 10, 23, 0, 0, 0, time.Local),
			time.Date(2025, 5, 11, 1, 0, 0, 0, time.Local),
			false,
		},
		{
			"same day-of-month different month",
			time.Date(2025, 5, 10, 12, 0, 0, 0, time.Local),
			time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local),
			false,
		},
		{
			"same date different year",
			time.Date(2024, 5, 10, 12, 0, 0, 0, time.Local),
			time.Date(2025, 5, 10, 12, 0, 0, 0, time.Local),
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dates.SameCalendarDay(tt.a, tt.b); got != tt.want {
				t.Errorf("SameCalendarDay(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
