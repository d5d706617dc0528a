package render

import (
	"fmt"
	"time"
)

// TimeOfDay selects the background variant.
type TimeOfDay string

const (
	Night   TimeOfDay = "night"
	Morning TimeOfDay = "morning"
	Day     TimeOfDay = "day"
	Evening TimeOfDay = "evening"
)

// Season selects the background directory.
type Season string

const (
	Winter Season = "winter"
	Summer Season = "summer"
)

// Mode is what the avatar shows.
type Mode string

const (
	// ModeClock shows the current time as HH:MM.
	ModeClock Mode = "clock"
	// ModeCountdown shows the number of days left until New Year.
	ModeCountdown Mode = "countdown"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeClock, ModeCountdown:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q (want %q or %q)", s, ModeClock, ModeCountdown)
	}
}

// ClassifyTimeOfDay maps a 24-hour clock hour to a time of day.
// Night spans 21:00-05:59, so 20:xx is still evening.
func ClassifyTimeOfDay(hour int) TimeOfDay {
	switch {
	case hour < 6 || hour > 20:
		return Night
	case hour < 11:
		return Morning
	case hour < 17:
		return Day
	default:
		return Evening
	}
}

// ClassifySeason returns Winter for December, January and February only.
// November counts as summer.
func ClassifySeason(month time.Month) Season {
	switch month {
	case time.December, time.January, time.February:
		return Winter
	default:
		return Summer
	}
}
