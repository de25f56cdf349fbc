package sat

import (
	"log"

	"github.com/rhartert/yagh"
)

// RewardMode selects how variable activities are rewarded.
type RewardMode int

const (
	// EVSIDS bumps the activity of every variable seen during conflict
	// analysis by a step that grows at each conflict.
	EVSIDS RewardMode = iota

	// LearningRate rewards variables proportionally to the rate at which
	// they participated in conflicts while they were assigned.
	LearningRate
)

// VarOrder maintains the order of variable to be assigned by the solver.
type VarOrder struct {
	// Binary heap to access the next variable with the highest score. The heap
	// breaks ties using the index of its elements which will correspond to the
	// order in which variables are declared with AddVar.
	order *yagh.IntMap[float64]

	scores     []float64 // in [0, 1e100)
	scoreInc   float64   // in (0, 1e100)
	scoreDecay float64   // in (0, 1]
	decayMax   float64
	adaptive   bool

	mode RewardMode

	phases      []LBool
	phaseSaving bool

	// Learning-rate state: number of conflicts each assigned variable
	// participated in, and the conflict count at its assignment.
	participated []int64
	assignedAt   []int64
	conflicts    int64
	emaActivity  EMA
}

// decayStep is the per-conflict increment that moves the decay factor from
// its configured initial value toward decayMax.
const decayStep = 0.01

// NewVarOrder returns a new initialized VarOrder.
func NewVarOrder(mode RewardMode, decay, decayMax float64, adaptive, phaseSaving bool) *VarOrder {
	return &VarOrder{
		order:       yagh.New[float64](0),
		scoreInc:    1,
		scoreDecay:  decay,
		decayMax:    decayMax,
		adaptive:    adaptive,
		mode:        mode,
		phaseSaving: phaseSaving,
		emaActivity: NewEMA(0.999),
	}
}

// AddVar adds a new variable with the given inital score and phase.
func (vo *VarOrder) AddVar(initScore float64, initPhase bool) {
	varID := len(vo.phases)

	vo.scores = append(vo.scores, initScore)
	vo.phases = append(vo.phases, Lift(initPhase))
	vo.participated = append(vo.participated, 0)
	vo.assignedAt = append(vo.assignedAt, 0)

	vo.order.GrowBy(1)
	vo.order.Put(varID, -initScore)
}

// OnAssign must be called by the solver when variable v is assigned.
func (vo *VarOrder) OnAssign(v int) {
	if vo.mode == LearningRate {
		vo.assignedAt[v] = vo.conflicts
		vo.participated[v] = 0
	}
}

// Reinsert adds variable v back to the set of candidates to be selected. This
// function must be called by the solver when v is being unassigned (e.g. when
// a backtrack occurs) where val is the value the variable was assigned to.
func (vo *VarOrder) Reinsert(v int, val LBool) {
	if vo.phaseSaving {
		vo.phases[v] = val
	}
	if vo.mode == LearningRate {
		if interval := vo.conflicts - vo.assignedAt[v]; interval > 0 {
			rate := float64(vo.participated[v]) / float64(interval)
			vo.scores[v] = vo.scoreDecay*vo.scores[v] + (1-vo.scoreDecay)*rate
			vo.emaActivity.Add(vo.scores[v])
		}
		vo.participated[v] = 0
	}
	vo.order.Put(v, -vo.scores[v])
}

// OnConflictSeen rewards variable v for appearing in the implication graph of
// the conflict being analyzed.
func (vo *VarOrder) OnConflictSeen(v int) {
	switch vo.mode {
	case EVSIDS:
		vo.BumpScore(v)
	case LearningRate:
		vo.participated[v]++
	}
}

// OnConflict must be called once per conflict. It decays the scores and
// moves the decay factor one step closer to its maximum.
func (vo *VarOrder) OnConflict() {
	vo.conflicts++
	if vo.mode == EVSIDS {
		vo.DecayScores()
	}
	if vo.adaptive && vo.scoreDecay < vo.decayMax {
		vo.scoreDecay += decayStep
		if vo.scoreDecay > vo.decayMax {
			vo.scoreDecay = vo.decayMax
		}
	}
}

// DecayScores slightly decreases the scores of the variables. This is used
// to give more importance to variables that have had their scores increased
// recently compared to variables that had their scores increased in the past.
func (vo *VarOrder) DecayScores() {
	vo.scoreInc /= vo.scoreDecay // decay activities by bumping increment
	if vo.scoreInc > 1e100 {
		vo.rescaleScoresAndIncrement()
	}
}

// BumpScore increases the score of the given variable. Note that this operation
// might trigger a rescaling of all variables scores if the score of v exceeds
// a given threshold. The rescaling is done in way that conserves the relative
// importance of each variable when compared to each other.
func (vo *VarOrder) BumpScore(v int) {
	newScore := vo.scores[v] + vo.scoreInc
	vo.scores[v] = newScore
	if vo.order.Contains(v) {
		vo.order.Put(v, -newScore)
	}
	if vo.scores[v] > 1e100 {
		vo.rescaleScoresAndIncrement()
	}
}

// NextDecision returns the next unnassigned literal to be assigned to true.
// The literal's polarity is the variable's saved phase.
func (vo *VarOrder) NextDecision(s *Solver) Literal {
	for {
		next, ok := vo.order.Pop()
		if !ok {
			log.Fatalln("empty heap")
		}
		if s.VarValue(next.Elem) != Unknown {
			continue // already assigned
		}
		if s.eliminated[next.Elem] {
			continue
		}

		if vo.phases[next.Elem] == True {
			return PositiveLiteral(next.Elem)
		}
		return NegativeLiteral(next.Elem)
	}
}

// RephaseFrom overwrites the saved phases with the given target assignment.
func (vo *VarOrder) RephaseFrom(target []LBool) {
	for v, val := range target {
		if val != Unknown {
			vo.phases[v] = val
		}
	}
}

func (vo *VarOrder) rescaleScoresAndIncrement() {
	vo.scoreInc *= 1e-100 // important to keep proportions
	for v, s := range vo.scores {
		newScore := s * 1e-100
		vo.scores[v] = newScore
		if vo.order.Contains(v) {
			vo.order.Put(v, -newScore)
		}
	}
}
