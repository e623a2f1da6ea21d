package feedid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func withClock(t *testing.T, ts time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return ts }
	idIncrementTs, idIncrement = 0, 0
	t.Cleanup(func() { now = prev })
}

func TestGenIdRoundTrip(t *testing.T) {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	withClock(t, ts)
	Init(7)
	defer Init(0)

	id := GenId()
	parts := Extract(id)

	assert.Equal(t, ts.UnixMilli(), parts.Timestamp)
	assert.Equal(t, int64(7), parts.NodeId)
	assert.Equal(t, int64(0), parts.Increment)
	assert.True(t, Time(id).Equal(ts))
}

func TestGenIdMonotonicWithinMillisecond(t *testing.T) {
	withClock(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	prev := GenId()
	for i := 0; i < 3*IncrementMask; i++ {
		id := GenId()
		assert.Greater(t, id, prev)
		prev = id
	}
}

func TestGenIdForTsIsLowerBound(t *testing.T) {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	withClock(t, ts)

	assert.LessOrEqual(t, GenIdForTs(ts.UnixMilli()), GenId())
}
