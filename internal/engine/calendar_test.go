package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/escalation-engine/internal/domain"
)

var weekdays = []domain.Weekday{
	domain.Monday, domain.Tuesday, domain.Wednesday, domain.Thursday, domain.Friday,
}

func TestElapsedQualifyingMinutes_WallClock(t *testing.T) {
	calendar := NewBusinessCalendar(time.UTC)
	from := time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		to   time.Time
		want int
	}{
		{"ninety minutes", from.Add(90 * time.Minute), 90},
		{"same instant", from, 0},
		{"to before from", from.Add(-time.Hour), 0},
		{"multiple days", from.Add(48 * time.Hour), 48 * 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calendar.ElapsedQualifyingMinutes(from, tt.to, false, 0, 0, nil)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestElapsedQualifyingMinutes_SameBusinessDay(t *testing.T) {
	calendar := NewBusinessCalendar(time.UTC)
	start := domain.TimeOfDay(9 * 60)
	end := domain.TimeOfDay(17 * 60)

	// Monday 2024-01-08.
	from := time.Date(2024, 1, 8, 8, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)

	got := calendar.ElapsedQualifyingMinutes(from, to, true, start, end, weekdays)
	assert.Equal(t, 180, got, "only 09:00-12:00 counts")
}

func TestElapsedQualifyingMinutes_SpansWeekend(t *testing.T) {
	calendar := NewBusinessCalendar(time.UTC)
	start := domain.TimeOfDay(9 * 60)
	end := domain.TimeOfDay(17 * 60)

	// Friday 2024-01-05 16:00 through Monday 2024-01-08 10:00.
	from := time.Date(2024, 1, 5, 16, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)

	got := calendar.ElapsedQualifyingMinutes(from, to, true, start, end, weekdays)
	assert.Equal(t, 120, got, "Friday 16:00-17:00 plus Monday 09:00-10:00")

	raw := calendar.ElapsedQualifyingMinutes(from, to, false, 0, 0, nil)
	assert.Less(t, got, raw, "business-hours elapsed must be below wall clock across a weekend")
}

func TestElapsedQualifyingMinutes_NoWorkingDays(t *testing.T) {
	calendar := NewBusinessCalendar(time.UTC)

	// Saturday only, working days exclude weekends.
	from := time.Date(2024, 1, 6, 9, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 6, 17, 0, 0, 0, time.UTC)

	got := calendar.ElapsedQualifyingMinutes(from, to, true, 9*60, 17*60, weekdays)
	assert.Zero(t, got)
}

func TestElapsedQualifyingMinutes_OutsideWindow(t *testing.T) {
	calendar := NewBusinessCalendar(time.UTC)

	// Monday evening, after business hours.
	from := time.Date(2024, 1, 8, 18, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 8, 22, 0, 0, 0, time.UTC)

	got := calendar.ElapsedQualifyingMinutes(from, to, true, 9*60, 17*60, weekdays)
	assert.Zero(t, got)
}

func TestElapsedQualifyingMinutes_FullWeek(t *testing.T) {
	calendar := NewBusinessCalendar(time.UTC)

	// Monday 2024-01-08 00:00 through Monday 2024-01-15 00:00: five full
	// 8-hour business days.
	from := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	got := calendar.ElapsedQualifyingMinutes(from, to, true, 9*60, 17*60, weekdays)
	assert.Equal(t, 5*8*60, got)
}
