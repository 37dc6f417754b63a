package engine

import (
	"time"

	"example.com/minutes/internal/domain"
)

// QualityScores derives a 0-100 integer score per local date (oldest first):
// the share of that day's non-sleep minutes spent on good-classified
// activities, floored. A day with no non-sleep minutes scores 0. The caller
// supplies events already filtered to non-sleep activities.
func QualityScores(dates []Date, loc *time.Location, events []domain.Event, goodIDs map[int64]struct{}) ([]string, []int) {
	labels := make([]string, len(dates))
	scores := make([]int, len(dates))
	for i, d := range dates {
		w := DayWindow(d, loc)
		labels[i] = d.Label()

		total, good := 0, 0
		for _, ev := range events {
			m := w.ClipMinutes(ev.Start, ev.End)
			if m == 0 {
				continue
			}
			total += m
			if _, ok := goodIDs[ev.ActivityID]; ok {
				good += m
			}
		}
		if total > 0 {
			scores[i] = 100 * good / total
		}
	}
	return labels, scores
}
