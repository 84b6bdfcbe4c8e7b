package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreshold(t *testing.T) {
	th := Threshold(0.5)
	require.NotNil(t, th)
	assert.InDelta(t, 0.5, *th, 1e-9)

	zero := Threshold(0)
	require.NotNil(t, zero)
	assert.Zero(t, *zero)
}

func TestRetrievalResult_LatencyMs(t *testing.T) {
	r := &RetrievalResult{Latency: 1500 * time.Microsecond}
	assert.Equal(t, int64(1), r.LatencyMs())

	r.Latency = 2 * time.Second
	assert.Equal(t, int64(2000), r.LatencyMs())
}
