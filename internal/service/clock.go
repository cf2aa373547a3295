package service

import "time"

// DayLayout formats a game day.
const DayLayout = "2006-01-02"

// Clock tells services what day it is in the market's timezone.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

// NewClock returns a wall clock for loc.
func NewClock(loc *time.Location) Clock {
	return Clock{Now: time.Now, Location: loc}
}

// Today returns the current game day.
func (c Clock) Today() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return GameDay(now(), loc)
}

// GameDay maps an instant to its game day: the calendar date in loc, held as
// midnight UTC so it compares and stores as a plain date.
func GameDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD game day.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DayLayout, s, time.UTC)
}
