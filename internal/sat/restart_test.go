package sat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestarter_NoRestartBeforeStep(t *testing.T) {
	opts := DefaultOptions
	opts.RestartStep = 100
	r := newRestarter(opts)

	for i := int64(1); i < 100; i++ {
		r.onConflict(10, 5)
		assert.False(t, r.shouldRestart(i))
	}
}

func TestRestarter_FiresOnDegradingLBD(t *testing.T) {
	opts := DefaultOptions
	opts.RestartStep = 10
	r := newRestarter(opts)

	// Long stretch of good (low LBD) conflicts, then a burst of bad ones.
	n := int64(0)
	for i := 0; i < 1000; i++ {
		n++
		r.onConflict(3, 5)
	}
	require.False(t, r.shouldRestart(n))

	fired := false
	for i := 0; i < 200; i++ {
		n++
		r.onConflict(50, 5)
		if r.shouldRestart(n) {
			fired = true
			break
		}
	}
	assert.True(t, fired)
}

func TestRestarter_BlockedByGrowingTrail(t *testing.T) {
	opts := DefaultOptions
	opts.RestartStep = 10
	r := newRestarter(opts)

	for i := 0; i < 100; i++ {
		r.onConflict(3, 10)
	}

	// A trail far above its average blocks the next trigger even if the
	// LBD condition fires.
	r.onConflict(50, 1000)
	require.True(t, r.blocked)
	for i := 0; i < 50; i++ {
		r.onConflict(50, 10)
	}
	assert.False(t, r.shouldRestart(200))
}

func TestStageManager_SpansFollowLuby(t *testing.T) {
	sm := newStageManager(100) // unit size 10
	require.Equal(t, 10, sm.unitSize)
	require.Equal(t, int64(10), sm.endOfStage)

	// Scales follow the Luby series: 1, 1, 2, 1, 1, 2, 4, ...
	wantScales := []int{1, 1, 2, 1, 1, 2, 4}
	now := int64(0)
	for _, want := range wantScales {
		now = sm.endOfStage + 1
		require.True(t, sm.stageEnded(now))
		sm.prepareNewStage(now)
		assert.Equal(t, want, sm.scale)
		assert.Equal(t, now+int64(want*10), sm.endOfStage)
	}
}

func TestStageManager_CycleOnReturnToOne(t *testing.T) {
	sm := newStageManager(100)

	newCycles := 0
	for i := 0; i < 7; i++ {
		if sm.prepareNewStage(int64(i * 100)) {
			newCycles++
		}
	}

	// Scales 1,1,2,1,1,2,4: the first stage starts the first cycle, after
	// which each return to scale 1 opens a new one.
	assert.Equal(t, 3, newCycles)
	assert.Equal(t, 4, sm.cycle)
}

func TestStageManager_NumReducible(t *testing.T) {
	sm := newStageManager(100) // unit size 10, keep 2*sqrt(10) = 6
	assert.Equal(t, 10-6, sm.numReducible())

	sm.cycle = 3
	assert.Equal(t, 30-6, sm.numReducible())
}

func TestStageManager_TinyProblem(t *testing.T) {
	sm := newStageManager(0)
	require.Equal(t, 1, sm.unitSize)
	assert.Equal(t, 0, sm.numReducible())
}
