package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/minutes/internal/domain"
)

func TestQualityScoresFlooredShare(t *testing.T) {
	loc := mustLoad(t, "UTC")
	dates := []Date{{Year: 2025, Month: time.April, Day: 18}}
	good := map[int64]struct{}{1: {}}

	events := []domain.Event{
		{ActivityID: 1, Start: utc(9, 0, 0), End: utc(10, 0, 0)},  // 60 good
		{ActivityID: 2, Start: utc(10, 0, 0), End: utc(11, 30, 0)}, // 90 bad
	}

	labels, scores := QualityScores(dates, loc, events, good)

	require.Equal(t, []string{"fri"}, labels)
	// floor(100 * 60 / 150) = 40
	require.Equal(t, []int{40}, scores)
}

func TestQualityScoresEmptyDayScoresZero(t *testing.T) {
	loc := mustLoad(t, "UTC")
	dates := DatesEnding(Date{Year: 2025, Month: time.April, Day: 18}, 7)

	_, scores := QualityScores(dates, loc, nil, nil)

	for _, s := range scores {
		require.Zero(t, s)
	}
}

func TestQualityScoresStayWithinBounds(t *testing.T) {
	loc := mustLoad(t, "UTC")
	dates := []Date{{Year: 2025, Month: time.April, Day: 18}}
	good := map[int64]struct{}{1: {}}

	allGood := []domain.Event{{ActivityID: 1, Start: utc(9, 0, 0), End: utc(10, 0, 0)}}
	_, scores := QualityScores(dates, loc, allGood, good)
	require.Equal(t, []int{100}, scores)

	allBad := []domain.Event{{ActivityID: 2, Start: utc(9, 0, 0), End: utc(10, 0, 0)}}
	_, scores = QualityScores(dates, loc, allBad, good)
	require.Equal(t, []int{0}, scores)
}

func TestQualityScoresUsePerDayClipping(t *testing.T) {
	loc := mustLoad(t, "UTC")
	dates := []Date{
		{Year: 2025, Month: time.April, Day: 17},
		{Year: 2025, Month: time.April, Day: 18},
	}
	good := map[int64]struct{}{1: {}}

	// Good activity crossing midnight: one hour lands in each day. The bad
	// activity only touches the 18th.
	events := []domain.Event{
		{ActivityID: 1, Start: time.Date(2025, time.April, 17, 23, 0, 0, 0, time.UTC), End: utc(1, 0, 0)},
		{ActivityID: 2, Start: utc(1, 0, 0), End: utc(4, 0, 0)},
	}

	_, scores := QualityScores(dates, loc, events, good)

	require.Equal(t, []int{100, 25}, scores)
}
