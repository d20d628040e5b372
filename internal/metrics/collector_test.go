package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecordTiming(t *testing.T) {
	c := NewCollector()

	c.RecordTiming(OpSearchPage, 10*time.Millisecond, false)
	c.RecordTiming(OpSearchPage, 30*time.Millisecond, true)
	c.RecordTiming(OpFetchDetail, 5*time.Millisecond, false)

	snap := c.Snapshot()
	require.Len(t, snap.Operations, 2)

	// sorted by name
	assert.Equal(t, OpFetchDetail, snap.Operations[0].Name)
	search := snap.Operations[1]
	assert.Equal(t, OpSearchPage, search.Name)
	assert.Equal(t, int64(2), search.Count)
	assert.Equal(t, int64(1), search.Failures)
	assert.Equal(t, int64(10), search.MinTimeMs)
	assert.Equal(t, int64(30), search.MaxTimeMs)
	assert.InDelta(t, 20.0, search.AvgTimeMs, 0.001)
}

func TestCollectorTrack(t *testing.T) {
	c := NewCollector()

	done := c.Track(OpListCategories)
	done(errors.New("boom"))

	snap := c.Snapshot()
	require.Len(t, snap.Operations, 1)
	assert.Equal(t, int64(1), snap.Operations[0].Count)
	assert.Equal(t, int64(1), snap.Operations[0].Failures)
}

func TestNilCollector(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.RecordTiming(OpSearchPage, time.Millisecond, false)
		c.Track(OpSearchPage)(nil)
	})
	assert.Empty(t, c.Snapshot().Operations)
}
