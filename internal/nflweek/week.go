// Package nflweek maps instants to NFL week numbers.
//
// A week runs Tuesday morning to Tuesday morning: Monday night games
// finish after midnight UTC, so an instant on Tuesday before 05:00 UTC
// still counts toward the week that is about to close.
package nflweek

import (
	"math"
	"time"
)

const (
	rolloverWeekday = time.Tuesday
	rolloverHour    = 5
)

// WeekOf returns the 1-based week number for t given the season start.
// Undefined for instants before the season start.
func WeekOf(t, seasonStart time.Time) int {
	return weekIndex(t, seasonStart) + 1
}

// LastCompleted returns the number of the most recently closed week,
// i.e. the week the scorer should settle when no week is given.
func LastCompleted(t, seasonStart time.Time) int {
	return weekIndex(t, seasonStart)
}

func weekIndex(t, seasonStart time.Time) int {
	t = t.UTC()
	if t.Weekday() == rolloverWeekday && t.Hour() < rolloverHour {
		t = t.Add(-24 * time.Hour)
	}

	days := t.Sub(seasonStart.UTC()).Hours() / 24
	return int(math.Floor(days / 7))
}
