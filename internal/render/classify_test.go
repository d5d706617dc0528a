package render

import (
	"testing"
	"time"
)

func TestClassifyTimeOfDayIsTotal(t *testing.T) {
	want := map[TimeOfDay][]int{
		Night:   {0, 1, 2, 3, 4, 5, 21, 22, 23},
		Morning: {6, 7, 8, 9, 10},
		Day:     {11, 12, 13, 14, 15, 16},
		Evening: {17, 18, 19, 20},
	}

	seen := make(map[int]bool)
	for tod, hours := range want {
		for _, hour := range hours {
			if got := ClassifyTimeOfDay(hour); got != tod {
				t.Errorf("ClassifyTimeOfDay(%d) = %s, want %s", hour, got, tod)
			}
			seen[hour] = true
		}
	}

	if len(seen) != 24 {
		t.Fatalf("expected all 24 hours covered, got %d", len(seen))
	}
}

func TestClassifyTimeOfDayEveningNightBoundary(t *testing.T) {
	if got := ClassifyTimeOfDay(20); got != Evening {
		t.Errorf("hour 20 should be evening, got %s", got)
	}
	if got := ClassifyTimeOfDay(21); got != Night {
		t.Errorf("hour 21 should be night, got %s", got)
	}
}

func TestClassifySeason(t *testing.T) {
	for month := time.January; month <= time.December; month++ {
		want := Summer
		if month == time.December || month == time.January || month == time.February {
			want = Winter
		}
		if got := ClassifySeason(month); got != want {
			t.Errorf("ClassifySeason(%s) = %s, want %s", month, got, want)
		}
	}

	if ClassifySeason(time.November) != Summer {
		t.Error("November must stay summer")
	}
}

func TestParseMode(t *testing.T) {
	for _, name := range []string{"clock", "countdown"} {
		if _, err := ParseMode(name); err != nil {
			t.Errorf("ParseMode(%q) returned error: %v", name, err)
		}
	}
	if _, err := ParseMode("weather"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
