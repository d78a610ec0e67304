package domain

import (
	"time"

	"github.com/dustin/go-humanize"
)

// CycleEvent is the phase the space's governance calendar is currently in.
type CycleEvent struct {
	Title string
	Start time.Time
	End   time.Time
}

// SpaceInfo summarises a governance space.
type SpaceInfo struct {
	Name          string
	CurrentCycle  int
	CurrentEvent  CycleEvent
	SnapshotSpace string
}

// Countdown is the time left in the current governance event.
type Countdown struct {
	Cycle     int
	Event     string
	EndsAt    time.Time
	Remaining time.Duration
	Label     string
}

// Countdown computes the remaining time of the current event at now. An
// event without an end time yields the "-" label and zero duration.
func (s SpaceInfo) Countdown(now time.Time) Countdown {
	event := s.CurrentEvent.Title
	if event == "" {
		event = "Unknown"
	}

	cd := Countdown{
		Cycle:  s.CurrentCycle,
		Event:  event,
		EndsAt: s.CurrentEvent.End,
		Label:  "-",
	}
	if s.CurrentEvent.End.IsZero() {
		return cd
	}

	cd.Remaining = s.CurrentEvent.End.Sub(now)
	if cd.Remaining < 0 {
		cd.Remaining = 0
	}
	cd.Label = humanize.RelTime(now, s.CurrentEvent.End, "remaining", "overdue")
	return cd
}
