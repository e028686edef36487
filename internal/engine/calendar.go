package engine

import (
	"time"

	"github.com/spec-kit/escalation-engine/internal/domain"
)

// BusinessCalendar computes elapsed qualifying minutes in a single
// organizational timezone. All business-hours arithmetic in the engine goes
// through here.
type BusinessCalendar struct {
	loc *time.Location
}

// NewBusinessCalendar builds a calendar anchored to the given timezone.
func NewBusinessCalendar(loc *time.Location) BusinessCalendar {
	if loc == nil {
		loc = time.UTC
	}
	return BusinessCalendar{loc: loc}
}

// ElapsedQualifyingMinutes returns the number of minutes between from and to
// that count toward a rule's threshold. With businessHoursOnly unset it is
// plain wall-clock minutes. Otherwise it walks calendar days in the
// organizational timezone and sums, for each working day, the overlap of the
// [start,end) window with the portion of that day inside [from,to].
func (c BusinessCalendar) ElapsedQualifyingMinutes(from, to time.Time, businessHoursOnly bool, start, end domain.TimeOfDay, workingDays []domain.Weekday) int {
	if !to.After(from) {
		return 0
	}
	if !businessHoursOnly {
		return int(to.Sub(from) / time.Minute)
	}

	from = from.In(c.loc)
	to = to.In(c.loc)

	total := 0
	for day := from; ; day = day.AddDate(0, 0, 1) {
		year, month, date := day.Date()
		if !containsWeekday(workingDays, domain.FromTime(day.Weekday())) {
			if sameOrAfter(year, month, date, to) {
				break
			}
			continue
		}

		windowStart := time.Date(year, month, date, int(start)/60, int(start)%60, 0, 0, c.loc)
		windowEnd := time.Date(year, month, date, int(end)/60, int(end)%60, 0, 0, c.loc)

		segStart := windowStart
		if from.After(segStart) {
			segStart = from
		}
		segEnd := windowEnd
		if to.Before(segEnd) {
			segEnd = to
		}
		if segEnd.After(segStart) {
			total += int(segEnd.Sub(segStart) / time.Minute)
		}

		if sameOrAfter(year, month, date, to) {
			break
		}
	}
	return total
}

func sameOrAfter(year int, month time.Month, date int, to time.Time) bool {
	ty, tm, td := to.Date()
	if year != ty {
		return year >= ty
	}
	if month != tm {
		return month >= tm
	}
	return date >= td
}

func containsWeekday(days []domain.Weekday, d domain.Weekday) bool {
	for _, candidate := range days {
		if candidate == d {
			return true
		}
	}
	return false
}
