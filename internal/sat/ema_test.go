package sat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEMA_FirstValueInitializes(t *testing.T) {
	ema := NewEMA(0.9)
	ema.Add(42)

	assert.Equal(t, 42.0, ema.Val())
}

func TestEMA_Decay(t *testing.T) {
	ema := NewEMA(0.5)
	ema.Add(10)
	ema.Add(20)

	assert.InDelta(t, 15.0, ema.Val(), 1e-9)

	ema.Add(20)
	assert.InDelta(t, 17.5, ema.Val(), 1e-9)
}

func TestEMA2_TrendTracksDegradation(t *testing.T) {
	e := NewEMA2(0.5, 0.99)
	for i := 0; i < 100; i++ {
		e.Add(2)
	}

	// Stable signal: fast and slow agree.
	assert.InDelta(t, 1.0, e.Trend(), 0.01)

	for i := 0; i < 10; i++ {
		e.Add(10)
	}

	// The fast average reacts first.
	assert.Greater(t, e.Fast(), e.Slow())
	assert.Greater(t, e.Trend(), 1.0)
}

func TestEMA2_TrendWithoutObservations(t *testing.T) {
	e := NewEMA2(0.5, 0.99)
	assert.Equal(t, 1.0, e.Trend())
}
