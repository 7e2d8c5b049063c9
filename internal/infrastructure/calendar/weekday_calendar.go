// Package calendar provides the configured dispatch calendar.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/consolidation"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/infrastructure/config"
)

const dateLayout = "2006-01-02"

// WeekdayCalendar dispatches on fixed weekdays, skipping holidays.
type WeekdayCalendar struct {
	weekdays map[time.Weekday]bool
	holidays map[string]bool
	loc      *time.Location
}

// New builds a calendar from config. An empty weekday list means every day.
func New(cfg config.CalendarConfig) (*WeekdayCalendar, error) {
	loc := time.UTC
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("calendar timezone %q: %w", cfg.Timezone, err)
		}
		loc = l
	}

	c := &WeekdayCalendar{
		weekdays: make(map[time.Weekday]bool),
		holidays: make(map[string]bool),
		loc:      loc,
	}
	for _, name := range cfg.DispatchWeekdays {
		wd, err := ParseWeekday(name)
		if err != nil {
			return nil, err
		}
		c.weekdays[wd] = true
	}
	if len(c.weekdays) == 0 {
		for wd := time.Sunday; wd <= time.Saturday; wd++ {
			c.weekdays[wd] = true
		}
	}
	for _, h := range cfg.Holidays {
		d, err := time.Parse(dateLayout, strings.TrimSpace(h))
		if err != nil {
			return nil, fmt.Errorf("calendar holiday %q: %w", h, err)
		}
		c.holidays[d.Format(dateLayout)] = true
	}
	return c, nil
}

// NextDispatchDay returns midnight of the first dispatch day strictly after from,
// in the calendar's time zone.
func (c *WeekdayCalendar) NextDispatchDay(from time.Time) time.Time {
	y, m, d := from.In(c.loc).Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, c.loc)
	// bounded so a holiday list covering every weekday cannot loop forever
	for i := 0; i < 730; i++ {
		day = day.AddDate(0, 0, 1)
		if c.IsDispatchDay(day) {
			return day
		}
	}
	return day
}

// IsDispatchDay reports whether vehicles leave on day
func (c *WeekdayCalendar) IsDispatchDay(day time.Time) bool {
	day = day.In(c.loc)
	return c.weekdays[day.Weekday()] && !c.holidays[day.Format(dateLayout)]
}

// ParseWeekday accepts full or three-letter English weekday names
func ParseWeekday(name string) (time.Weekday, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		full := strings.ToLower(wd.String())
		if n == full || (len(n) == 3 && strings.HasPrefix(full, n)) {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}

var _ consolidation.DispatchCalendar = (*WeekdayCalendar)(nil)
