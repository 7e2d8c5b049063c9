package consolidation

import "time"

// DispatchCalendar decides on which days vehicles leave
type DispatchCalendar interface {
	// NextDispatchDay returns the first dispatch day strictly after from
	NextDispatchDay(from time.Time) time.Time
}

// CalendarFunc adapts a function to DispatchCalendar
type CalendarFunc func(from time.Time) time.Time

// NextDispatchDay implements DispatchCalendar
func (f CalendarFunc) NextDispatchDay(from time.Time) time.Time {
	return f(from)
}

// NextDay is a calendar on which every day is a dispatch day
var NextDay = CalendarFunc(func(from time.Time) time.Time {
	return startOfDay(from).AddDate(0, 0, 1)
})

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
