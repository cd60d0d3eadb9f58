package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTempoMultiplier(t *testing.T) {
	ts := newTempoState(500)
	assert.Equal(t, 10000.0, ts.multiplier) // default 120 BPM

	ts.set(1000000)
	assert.Equal(t, 20000.0, ts.multiplier)
}

func TestTempoMultiplierClampedToOne(t *testing.T) {
	ts := newTempoState(480)

	ts.set(10) // degenerate tempo, raw multiplier would be 0.2
	assert.Equal(t, 1.0, ts.multiplier)

	ts.set(0)
	assert.Equal(t, 1.0, ts.multiplier)
}

func TestTempoZeroDivision(t *testing.T) {
	ts := newTempoState(0)
	assert.False(t, ts.multiplier < 1)
}
