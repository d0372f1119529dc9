package store

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetDayBefore(t *testing.T) {
	d := GetDayBefore(0)
	now := time.Now()
	assert.True(t, d.Before(now.Add(-24*time.Hour)) || d.Equal(now.Add(-24*time.Hour)))
	assert.Zero(t, d.Hour())
	assert.Zero(t, d.Minute())

	assert.True(t, GetDayBefore(7).Before(d))
}

func TestSeqKey(t *testing.T) {
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 1, 2}, seqKey(258))
	assert.Equal(t, uint64(258), keySeq(seqKey(258)))
	assert.Zero(t, keySeq([]byte{1}))

	assert.Equal(t, -1, bytes.Compare(seqKey(255), seqKey(256)))
}

func TestBackoff(t *testing.T) {
	var d time.Duration
	Backoff(&d)
	assert.Equal(t, BackoffMinInterval, d)
	Backoff(&d)
	assert.Equal(t, 1500*time.Millisecond, d)

	d = BackoffMaxInterval
	Backoff(&d)
	assert.Equal(t, BackoffMinInterval, d)
}
