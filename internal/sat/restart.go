package sat

import "math"

// Decay factors for the fast and slow LBD averages and for the trail length
// average driving restart blocking.
const (
	lbdEMAFastDecay = 1 - 1.0/32
	lbdEMASlowDecay = 1 - 1.0/4096
	trailEMADecay   = 1 - 1.0/4096
)

// restarter decides when the search should be restarted. Forcing restarts
// fire when the short-term LBD average degrades compared to its long-term
// behavior; a sudden growth of the trail blocks the next forcing restart as
// the solver is likely converging to a model.
type restarter struct {
	lbd   EMA2
	trail EMA

	forceK float64
	blockR float64
	step   int64

	nextRestart int64
	blocked     bool

	numForced  int64
	numBlocked int64
}

func newRestarter(opts Options) *restarter {
	return &restarter{
		lbd:         NewEMA2(lbdEMAFastDecay, lbdEMASlowDecay),
		trail:       NewEMA(trailEMADecay),
		forceK:      opts.RestartLBDFactor,
		blockR:      opts.RestartBlockFactor,
		step:        opts.RestartStep,
		nextRestart: opts.RestartStep,
	}
}

// onConflict feeds the averages with the conflict's learnt LBD and the trail
// length at conflict time.
func (r *restarter) onConflict(lbd, trailLen int) {
	r.lbd.Add(float64(lbd))
	if r.trail.init && float64(trailLen) > r.blockR*r.trail.Val() {
		r.blocked = true
	}
	r.trail.Add(float64(trailLen))
}

// shouldRestart reports whether a restart must be performed now. At most one
// restart fires every step conflicts; a blocked trigger consumes the window
// without restarting.
func (r *restarter) shouldRestart(numConflicts int64) bool {
	if numConflicts < r.nextRestart {
		return false
	}
	if r.blocked {
		r.blocked = false
		r.numBlocked++
		r.nextRestart = numConflicts + r.step
		return false
	}
	if r.lbd.Fast()*r.forceK > r.lbd.Slow() {
		r.numForced++
		r.nextRestart = numConflicts + r.step
		return true
	}
	return false
}

// stageManager paces clause reductions and rephasing. A stage is a span of
// conflicts whose length is the current Luby value times the unit size; a
// cycle completes every time the Luby series returns to one.
type stageManager struct {
	luby       LubySeries
	cycle      int
	stage      int
	unitSize   int
	scale      int
	endOfStage int64
}

func newStageManager(numVars int) *stageManager {
	unit := int(math.Sqrt(float64(numVars)))
	if unit < 1 {
		unit = 1
	}
	return &stageManager{
		cycle:      1,
		unitSize:   unit,
		scale:      1,
		endOfStage: int64(unit),
	}
}

func (sm *stageManager) stageEnded(numConflicts int64) bool {
	return sm.endOfStage < numConflicts
}

// prepareNewStage advances to the next stage and returns true when a new
// cycle begins.
func (sm *stageManager) prepareNewStage(numConflicts int64) bool {
	newCycle := false
	sm.scale = sm.luby.Next()
	if sm.scale == 1 && sm.stage > 0 {
		sm.cycle++
		newCycle = true
	}
	sm.stage++
	sm.endOfStage = numConflicts + int64(sm.scale*sm.unitSize)
	return newCycle
}

// currentSpan returns the reduction budget baseline for the current cycle.
func (sm *stageManager) currentSpan() int {
	return sm.cycle * sm.unitSize
}

// numReducible returns how many learnt clauses may be discarded by the next
// reduction.
func (sm *stageManager) numReducible() int {
	keep := 2 * int(math.Sqrt(float64(sm.unitSize)))
	if n := sm.currentSpan() - keep; n > 0 {
		return n
	}
	return 0
}
