package domain

import (
	"fmt"
	"time"
)

// Weekday numbers days Monday=0 through Sunday=6.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

const (
	DaysPerWeek  = 7
	HoursPerDay  = 24
	HoursPerWeek = DaysPerWeek * HoursPerDay
)

var weekdayNames = [DaysPerWeek]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func (d Weekday) String() string {
	if d < 0 || int(d) >= DaysPerWeek {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// WeekdayOf converts a time.Weekday (Sunday=0) to a Monday-based Weekday.
func WeekdayOf(d time.Weekday) Weekday {
	return Weekday((int(d) + 6) % DaysPerWeek)
}

// Slot is a recurring (day-of-week, hour-of-day) bucket.
type Slot struct {
	Day  Weekday `json:"day"`
	Hour int     `json:"hour"`
}

// SlotOf maps t to its slot using the local day and hour in loc.
func SlotOf(t time.Time, loc *time.Location) Slot {
	local := t.In(loc)
	return Slot{Day: WeekdayOf(local.Weekday()), Hour: local.Hour()}
}

// SlotAt returns the slot for a position on the weekly cycle.
func SlotAt(index int) Slot {
	index = ((index % HoursPerWeek) + HoursPerWeek) % HoursPerWeek
	return Slot{Day: Weekday(index / HoursPerDay), Hour: index % HoursPerDay}
}

func (s Slot) Valid() bool {
	return s.Day >= Monday && s.Day <= Sunday && s.Hour >= 0 && s.Hour < HoursPerDay
}

// Index is the slot's position on the weekly cycle, 0 (Mon 00:00) through 167 (Sun 23:00).
func (s Slot) Index() int {
	return int(s.Day)*HoursPerDay + s.Hour
}

// Distance returns the number of hours between two slots on the weekly cycle, in either direction.
func (s Slot) Distance(other Slot) int {
	d := s.Index() - other.Index()
	if d < 0 {
		d = -d
	}
	if HoursPerWeek-d < d {
		return HoursPerWeek - d
	}
	return d
}

// Next returns the first time strictly after now, in loc, at which the slot starts.
func (s Slot) Next(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	current := SlotOf(local, loc)
	ahead := s.Index() - current.Index()
	if ahead <= 0 {
		ahead += HoursPerWeek
	}
	start := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), 0, 0, 0, loc)
	// Adding whole days keeps wall-clock hours stable across DST changes.
	days, hours := ahead/HoursPerDay, ahead%HoursPerDay
	next := start.AddDate(0, 0, days)
	return time.Date(next.Year(), next.Month(), next.Day(), next.Hour()+hours, 0, 0, 0, loc)
}

func (s Slot) String() string {
	return fmt.Sprintf("%s %02d:00", s.Day, s.Hour)
}
