package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysSince(t *testing.T) {
	assert.Equal(t, 0, DaysSince(time.Now()))
	assert.Equal(t, 0, DaysSince(time.Now().Add(time.Hour))) // 未来时间按 0 计
	assert.Equal(t, 0, DaysSince(time.Now().Add(-23*time.Hour)))
	assert.Equal(t, 1, DaysSince(time.Now().Add(-25*time.Hour)))
	assert.Equal(t, 7, DaysSince(time.Now().Add(-7*24*time.Hour-time.Hour)))
}

func TestReviewGapDays(t *testing.T) {
	days, reviewed := ReviewGapDays(nil)
	assert.False(t, reviewed)
	assert.Zero(t, days)

	last := time.Now().Add(-3*24*time.Hour - time.Hour)
	days, reviewed = ReviewGapDays(&last)
	assert.True(t, reviewed)
	assert.Equal(t, 3, days)
}

func TestRound3(t *testing.T) {
	assert.InDelta(t, 0.123, Round3(0.12345), 1e-9)
	assert.InDelta(t, 0.124, Round3(0.1236), 1e-9)
	assert.InDelta(t, 1.0, Round3(0.9999), 1e-9)
	assert.InDelta(t, 0.0, Round3(0.0), 1e-9)
}
