package render

import (
	"fmt"
	"path"
	"time"
)

const (
	ClockFontSize   = 150.0
	NewYearFontSize = 110.0
	CaptionFontSize = 60.0

	newYearGreeting  = "Happy New Year!"
	countdownCaption = "until New Year"
)

// Text is a single line of overlay text. An empty Value means no line.
type Text struct {
	Value string
	Size  float64
}

// Scene describes what to draw for one instant.
type Scene struct {
	// Background is relative to the assets directory, e.g. "summer/day.png".
	Background string
	Primary    Text
	Secondary  Text
}

// Plan decides background and text for now in the given mode. It does no I/O.
func Plan(now time.Time, mode Mode) Scene {
	season := ClassifySeason(now.Month())
	timeOfDay := ClassifyTimeOfDay(now.Hour())
	background := path.Join(string(season), string(timeOfDay)+".png")

	if mode != ModeCountdown {
		return Scene{
			Background: background,
			Primary:    Text{Value: fmt.Sprintf("%02d:%02d", now.Hour(), now.Minute()), Size: ClockFontSize},
		}
	}

	if isNewYearHoliday(now) {
		return Scene{
			Background: path.Join(string(season), "newyear.png"),
			Primary:    Text{Value: newYearGreeting, Size: NewYearFontSize},
		}
	}

	return Scene{
		Background: background,
		Primary:    Text{Value: fmt.Sprintf("%d Days", DaysUntilNewYear(now)), Size: ClockFontSize},
		Secondary:  Text{Value: countdownCaption, Size: CaptionFontSize},
	}
}

// DaysUntilNewYear counts whole calendar days from now's date to the next
// January 1st. Dates are compared in UTC so DST shifts cannot drop a day.
func DaysUntilNewYear(now time.Time) int {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	newYear := time.Date(now.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC)

	days := int(newYear.Sub(today).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

func isNewYearHoliday(now time.Time) bool {
	_, month, day := now.Date()
	return (month == time.December && day == 31) || (month == time.January && day == 1)
}
