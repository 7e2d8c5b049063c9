package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/infrastructure/config"
)

func TestWeekdayCalendar_NextDispatchDay(t *testing.T) {
	cal, err := New(config.CalendarConfig{
		DispatchWeekdays: []string{"Tue", "friday"},
		Holidays:         []string{"2024-06-07"},
	})
	require.NoError(t, err)

	monday := time.Date(2024, 6, 3, 15, 30, 0, 0, time.UTC)
	tests := []struct {
		name string
		from time.Time
		want time.Time
	}{
		{"monday to tuesday", monday, time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)},
		{"strictly after a dispatch day", time.Date(2024, 6, 4, 9, 0, 0, 0, time.UTC), time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)},
		{"friday holiday skipped", time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)},
		{"next friday", time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(cal.NextDispatchDay(tt.from)), "got %s", cal.NextDispatchDay(tt.from))
		})
	}
}

func TestWeekdayCalendar_EveryDayByDefault(t *testing.T) {
	cal, err := New(config.CalendarConfig{})
	require.NoError(t, err)
	got := cal.NextDispatchDay(time.Date(2024, 6, 8, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC), got)
}

func TestWeekdayCalendar_Timezone(t *testing.T) {
	cal, err := New(config.CalendarConfig{Timezone: "Asia/Kolkata"})
	require.NoError(t, err)

	// 20:00 UTC Monday is already Tuesday 01:30 in India
	got := cal.NextDispatchDay(time.Date(2024, 6, 3, 20, 0, 0, 0, time.UTC))
	y, m, d := got.Date()
	assert.Equal(t, "Asia/Kolkata", got.Location().String())
	assert.Equal(t, []int{2024, 6, 5}, []int{y, int(m), d})
}

func TestNew_Errors(t *testing.T) {
	_, err := New(config.CalendarConfig{DispatchWeekdays: []string{"Funday"}})
	assert.ErrorContains(t, err, "unknown weekday")

	_, err = New(config.CalendarConfig{Holidays: []string{"07/06/2024"}})
	assert.ErrorContains(t, err, "holiday")

	_, err = New(config.CalendarConfig{Timezone: "Mars/Olympus"})
	assert.ErrorContains(t, err, "timezone")
}

func TestParseWeekday(t *testing.T) {
	wd, err := ParseWeekday(" WED ")
	require.NoError(t, err)
	assert.Equal(t, time.Wednesday, wd)

	_, err = ParseWeekday("we")
	assert.Error(t, err)
}
