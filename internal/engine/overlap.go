package engine

import (
	"math"
	"time"

	"example.com/minutes/internal/domain"
)

// ClipMinutes intersects [start, end) with the window and rounds the clipped
// span up to whole minutes. Empty and inverted clips contribute nothing.
func (w Window) ClipMinutes(start, end time.Time) int {
	if start.Before(w.Start) {
		start = w.Start
	}
	if end.After(w.End) {
		end = w.End
	}
	if !end.After(start) {
		return 0
	}
	return int(math.Ceil(end.Sub(start).Seconds() / 60))
}

// AccumulateMinutes sums clipped minutes across events. Rounding happens per
// clipped interval, never once over the aggregate: two adjacent sub-minute
// fragments each count a full minute. Charts and quality scores depend on
// the exact magnitude of that bias, so it must not be "fixed" here.
func AccumulateMinutes(w Window, events []domain.Event) int {
	total := 0
	for _, ev := range events {
		total += w.ClipMinutes(ev.Start, ev.End)
	}
	return total
}
