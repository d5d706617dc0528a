package scheduler

import (
	"sort"
	"time"

	"github.com/christophergentle/avatarclock/internal/render"
)

// Policy decides when the next cycle runs. Next must return an instant
// strictly after now.
type Policy interface {
	Name() string
	Next(now time.Time) time.Time
}

// MinutePolicy wakes at the start of the next minute.
type MinutePolicy struct{}

func (MinutePolicy) Name() string { return "per-minute" }

// Next waits 60s minus the elapsed seconds of the current minute. Sub-second
// precision is ignored, so at :00 the delay is a full minute.
func (MinutePolicy) Next(now time.Time) time.Time {
	return now.Add(time.Duration(60-now.Second()) * time.Second)
}

// DefaultCountdownHours are the hours the countdown avatar is refreshed at.
var DefaultCountdownHours = []int{0, 9, 17, 21}

// CountdownPolicy wakes at the next of a fixed set of daily hours.
type CountdownPolicy struct {
	Hours []int
}

// NewCountdownPolicy returns a policy for hours, sorted. No hours means DefaultCountdownHours.
func NewCountdownPolicy(hours ...int) CountdownPolicy {
	if len(hours) == 0 {
		hours = DefaultCountdownHours
	}
	sorted := append([]int(nil), hours...)
	sort.Ints(sorted)
	return CountdownPolicy{Hours: sorted}
}

func (CountdownPolicy) Name() string { return "countdown" }

// Next returns HH:00 today for the first configured hour after the current
// hour, or the first configured hour tomorrow once the last one has been reached.
func (p CountdownPolicy) Next(now time.Time) time.Time {
	hours := p.Hours
	if len(hours) == 0 {
		hours = DefaultCountdownHours
	}

	year, month, day := now.Date()
	for _, hour := range hours {
		if hour > now.Hour() {
			return time.Date(year, month, day, hour, 0, 0, 0, now.Location())
		}
	}
	return time.Date(year, month, day+1, hours[0], 0, 0, 0, now.Location())
}

// PolicyFor pairs each render mode with its refresh schedule.
func PolicyFor(mode render.Mode) Policy {
	if mode == render.ModeCountdown {
		return NewCountdownPolicy()
	}
	return MinutePolicy{}
}
