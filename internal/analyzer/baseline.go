package analyzer

import (
	"math"
	"time"

	"github.com/epasquet/boursobot/internal/models"
)

// ForumBaseline compares today's post count for the current hour slot
// against the trailing window of the same slot.
//
// baseline is the mean post count over rows inside the window; current is
// the mean over today's rows for the slot (a mean instead of a lookup, so a
// duplicate same-day row cannot skew the comparison). Either value is NaN
// when no row qualifies; callers must guard baseline > 0 before comparing.
func ForumBaseline(rows []models.ForumHistoryEntry, hour int, ref time.Time, windowDays int) (baseline, current float64) {
	refDate := truncateToDay(ref)
	windowStart := refDate.AddDate(0, 0, -windowDays)

	var windowPosts, todayPosts []float64
	for _, row := range rows {
		if row.Hour != hour {
			continue
		}
		d := truncateToDay(row.Date)
		if !d.Before(windowStart) {
			windowPosts = append(windowPosts, float64(row.Posts))
		}
		if !d.Before(refDate) {
			todayPosts = append(todayPosts, float64(row.Posts))
		}
	}
	return mean(windowPosts), mean(todayPosts)
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
