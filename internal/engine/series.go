package engine

import (
	"math"
	"time"

	"example.com/minutes/internal/domain"
)

// DailyMinutes partitions consecutive local dates (oldest first) into
// per-day windows and routes each event's clipped overlap into its day. An
// event spanning local midnight contributes to both neighbouring days.
func DailyMinutes(dates []Date, loc *time.Location, events []domain.Event) ([]string, []int) {
	labels := make([]string, len(dates))
	minutes := make([]int, len(dates))
	for i, d := range dates {
		w := DayWindow(d, loc)
		labels[i] = d.Label()
		minutes[i] = AccumulateMinutes(w, events)
	}
	return labels, minutes
}

// SleepHours buckets whole sleep events into the given dates (oldest first).
// A night belongs to the date before the local day its end falls on, so an
// interval straddling midnight is never split across two days. The whole
// event duration is recorded, rounded to a tenth of an hour; a later event
// in iteration order overwrites an earlier value for the same date, and
// dates with no night report 0.
func SleepHours(dates []Date, loc *time.Location, sleeps []domain.Event) ([]string, []float64) {
	index := make(map[Date]int, len(dates))
	labels := make([]string, len(dates))
	hours := make([]float64, len(dates))
	for i, d := range dates {
		index[d] = i
		labels[i] = d.Label()
	}

	for _, ev := range sleeps {
		night := DateOf(ev.End.In(loc)).AddDays(-1)
		if i, ok := index[night]; ok {
			hours[i] = math.Round(ev.Duration().Hours()*10) / 10
		}
	}
	return labels, hours
}
