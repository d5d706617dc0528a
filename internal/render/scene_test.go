package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlanClockMode(t *testing.T) {
	scene := Plan(time.Date(2025, time.June, 12, 14, 7, 33, 0, time.Local), ModeClock)

	assert.Equal(t, "summer/day.png", scene.Background)
	assert.Equal(t, "14:07", scene.Primary.Value)
	assert.Equal(t, ClockFontSize, scene.Primary.Size)
	assert.Empty(t, scene.Secondary.Value)
}

func TestPlanClockModeZeroPads(t *testing.T) {
	scene := Plan(time.Date(2025, time.January, 3, 4, 5, 0, 0, time.Local), ModeClock)

	assert.Equal(t, "winter/night.png", scene.Background)
	assert.Equal(t, "04:05", scene.Primary.Value)
}

func TestPlanCountdownOnNewYearsEve(t *testing.T) {
	scene := Plan(time.Date(2025, time.December, 31, 23, 50, 0, 0, time.Local), ModeCountdown)

	assert.Equal(t, "winter/newyear.png", scene.Background)
	assert.Equal(t, "Happy New Year!", scene.Primary.Value)
	assert.Equal(t, NewYearFontSize, scene.Primary.Size)
	assert.Empty(t, scene.Secondary.Value)
}

func TestPlanCountdownOnNewYearsDay(t *testing.T) {
	scene := Plan(time.Date(2026, time.January, 1, 9, 0, 0, 0, time.Local), ModeCountdown)

	assert.Equal(t, "winter/newyear.png", scene.Background)
	assert.Equal(t, "Happy New Year!", scene.Primary.Value)
}

func TestPlanCountdownDaysLeft(t *testing.T) {
	scene := Plan(time.Date(2025, time.December, 15, 8, 0, 0, 0, time.Local), ModeCountdown)

	assert.Equal(t, "winter/morning.png", scene.Background)
	assert.Equal(t, "17 Days", scene.Primary.Value)
	assert.Equal(t, "until New Year", scene.Secondary.Value)
	assert.Equal(t, CaptionFontSize, scene.Secondary.Size)
}

func TestDaysUntilNewYear(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"dec 15 morning", time.Date(2025, time.December, 15, 8, 0, 0, 0, time.UTC), 17},
		{"dec 15 late night", time.Date(2025, time.December, 15, 23, 59, 0, 0, time.UTC), 17},
		{"dec 30", time.Date(2025, time.December, 30, 12, 0, 0, 0, time.UTC), 2},
		{"jan 2", time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC), 364},
		{"leap year jan 2", time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC), 365},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysUntilNewYear(tt.now))
		})
	}
}

func TestDaysUntilNewYearAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}

	// Clocks go back on Oct 26 2025 in Berlin, so the span is not a whole number of 24h periods.
	now := time.Date(2025, time.October, 20, 0, 30, 0, 0, loc)
	assert.Equal(t, 73, DaysUntilNewYear(now))
}
