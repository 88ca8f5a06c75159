// Package analyzer turns snapshots into per-slot counters and decides when
// current activity stands out against the historical baseline.
package analyzer

import (
	"time"

	"github.com/epasquet/boursobot/internal/models"
)

// Summarize reduces one snapshot to the counters persisted for its slot.
func Summarize(snap *models.Snapshot, ref time.Time) models.ForumCounters {
	var c models.ForumCounters
	for _, topic := range snap.Topics {
		c.Posts += topic.ReplyCount
		if topic.CreatedOn(ref) {
			c.NewTopics++
			c.NewTopicsAnswers += topic.ReplyCount
		}
		if topic.AnsweredOn(ref) {
			c.TopicsAnsweredToday++
		}
	}
	return c
}
