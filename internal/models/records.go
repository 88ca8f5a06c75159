package models

import (
	"fmt"
	"time"
)

// TopicRecord is one forum thread as seen on the board page. It lives for
// the duration of a single scrape cycle and is never persisted on its own.
type TopicRecord struct {
	TopicTime      time.Time
	LastAnswerTime time.Time
	ReplyCount     int
}

// CreatedOn reports whether the topic was opened on the given date.
func (r TopicRecord) CreatedOn(date time.Time) bool {
	return sameDate(r.TopicTime, date)
}

// AnsweredOn reports whether the topic's last answer falls on the given date.
func (r TopicRecord) AnsweredOn(date time.Time) bool {
	return sameDate(r.LastAnswerTime, date)
}

// Snapshot holds everything extracted from one forum page fetch for one
// ticker. The three input sequences must be aligned; NewSnapshot enforces it.
type Snapshot struct {
	Ticker string
	Name   string
	Topics []TopicRecord
}

func NewSnapshot(ticker, name string, topicTimes, answerTimes []time.Time, replyCounts []int) (*Snapshot, error) {
	if len(topicTimes) != len(replyCounts) || len(topicTimes) != len(answerTimes) {
		return nil, &InconsistentSnapshotError{
			Name:        name,
			Topics:      len(topicTimes),
			LastAnswers: len(answerTimes),
			Counts:      len(replyCounts),
		}
	}
	topics := make([]TopicRecord, len(topicTimes))
	for i := range topicTimes {
		topics[i] = TopicRecord{
			TopicTime:      topicTimes[i],
			LastAnswerTime: answerTimes[i],
			ReplyCount:     replyCounts[i],
		}
	}
	return &Snapshot{Ticker: ticker, Name: name, Topics: topics}, nil
}

// ForumCounters are the per-slot summary counters computed from a snapshot.
type ForumCounters struct {
	NewTopics           int
	NewTopicsAnswers    int
	TopicsAnsweredToday int
	Posts               int
}

// ForumHistoryEntry is one persisted row of a ticker's forum history,
// keyed by (Date, Hour). Rows are append-only and never mutated.
type ForumHistoryEntry struct {
	Date                time.Time
	Hour                int
	Minute              int
	NewTopics           int
	NewTopicsAnswers    int
	TopicsAnsweredToday int
	Posts               int
}

// PreopenHistoryEntry is one persisted row of a ticker's pre-open history,
// keyed by (Date, Hour, Minute).
type PreopenHistoryEntry struct {
	Date          time.Time
	Hour          int
	Minute        int
	PreviousClose float64
	Preopen       float64
}

// PreopenQuote is the (previous close, pre-open indicative) pair read off
// the faceplate during the pre-open hour. Ok is false when the pair was not
// available, which is the normal case outside the pre-open hour.
type PreopenQuote struct {
	PreviousClose float64
	Preopen       float64
	Ok            bool
}

type ForumAlert struct {
	Ticker   string
	Name     string
	Posts    float64
	Baseline float64
}

type PreopenAlert struct {
	Ticker        string
	Name          string
	PreviousClose float64
	Preopen       float64
}

type NewsAlert struct {
	Ticker string
	Name   string
	Title  string
}

// RunReport summarises one batch run over the ticker list.
type RunReport struct {
	Started       time.Time
	Duration      time.Duration
	Processed     int
	Failed        int
	ForumAlerts   []ForumAlert
	PreopenAlerts []PreopenAlert
}

// InconsistentSnapshotError signals that the page structure did not match
// expectations: the three extracted sequences have different lengths.
type InconsistentSnapshotError struct {
	Name        string
	Topics      int
	LastAnswers int
	Counts      int
}

func (e *InconsistentSnapshotError) Error() string {
	return fmt.Sprintf("distinct number of elements found when parsing %s's forum: %d topics, %d last answers, %d counts",
		e.Name, e.Topics, e.LastAnswers, e.Counts)
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
