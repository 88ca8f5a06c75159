package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSnapshotRejectsMisalignedSequences(t *testing.T) {
	now := time.Now()
	_, err := NewSnapshot("AIR", "Airbus",
		[]time.Time{now, now},
		[]time.Time{now, now},
		[]int{1}, // one count short: must fail, not truncate
	)
	require.Error(t, err)

	var inconsistent *InconsistentSnapshotError
	require.True(t, errors.As(err, &inconsistent))
	assert.Equal(t, "Airbus", inconsistent.Name)
	assert.Equal(t, 2, inconsistent.Topics)
	assert.Equal(t, 1, inconsistent.Counts)
}

func TestNewSnapshotAlignsRecords(t *testing.T) {
	topic := time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)
	answer := time.Date(2024, time.March, 15, 11, 0, 0, 0, time.UTC)

	snap, err := NewSnapshot("AIR", "Airbus",
		[]time.Time{topic}, []time.Time{answer}, []int{7})
	require.NoError(t, err)
	require.Len(t, snap.Topics, 1)
	assert.Equal(t, TopicRecord{TopicTime: topic, LastAnswerTime: answer, ReplyCount: 7}, snap.Topics[0])
}

func TestTopicRecordDateFlags(t *testing.T) {
	ref := time.Date(2024, time.March, 15, 23, 59, 0, 0, time.UTC)
	r := TopicRecord{
		TopicTime:      time.Date(2024, time.March, 15, 0, 1, 0, 0, time.UTC),
		LastAnswerTime: time.Date(2024, time.March, 14, 23, 59, 0, 0, time.UTC),
	}
	assert.True(t, r.CreatedOn(ref), "same calendar day regardless of clock")
	assert.False(t, r.AnsweredOn(ref))
}
