package sat

import (
	"fmt"
	"io"
	"log"
	"time"
)

// Certifier records the clause additions and deletions performed by the
// solver so that an unsatisfiability proof can be emitted. Literals are given
// in DIMACS convention; an empty slice denotes the empty clause. The sink is
// append-only and is only called once the corresponding clause operation is
// final.
type Certifier interface {
	Add(lits []int)
	Delete(lits []int)
}

type Solver struct {
	// Clause database.
	constraints []*Clause
	learnts     []*Clause
	clauseInc   float64
	clauseDecay float64
	nextCID     int

	// Binary clauses are propagated through a dedicated index instead of the
	// watcher lists.
	binary *binaryLinks

	// Variable ordering.
	order *VarOrder

	// Watcher lists, one per literal.
	watchers [][]watcher

	// Value assigned to each literal.
	assigns []LBool

	// Trail. qHead is the index of the next trail entry to propagate.
	trail    []Literal
	trailLim []int
	qHead    int

	// Per-variable state.
	level      []int
	reason     []*Clause
	eliminated []bool

	numEliminated int

	// Whether the problem has reached a top level conflict.
	unsat bool

	// Restart and stage control, (re)initialized by Solve.
	restart *restarter
	stage   *stageManager

	// Best partial assignment seen so far, used as the rephasing target.
	bestPhases  []LBool
	bestAssigns int

	// Epoch-stamped scratch space for LBD computation, indexed by decision
	// level.
	lbdTemp []int
	lbdKey  int

	// Search statistics.
	TotalConflicts    int64
	TotalRestarts     int64
	TotalIterations   int64
	TotalDecisions    int64
	TotalPropagations int64
	TotalReductions   int64
	startTime         time.Time

	// Stop conditions.
	hasStopCond bool
	maxConflict int64
	timeout     time.Duration

	// Models.
	Models [][]bool

	certifier Certifier

	output io.Writer

	opts Options

	// Shared by operation that needs to put variables in a set and empty that
	// set efficiently.
	seenVar *ResetSet

	// Temporary slice used in the Propagate function. The slice is re-used by
	// all Propagate calls to avoid unnecessarily allocating new slices.
	tmpWatchers []watcher

	// Temporary slice used in analyze to accumulate literals before these are
	// used to create a new learnt clause. Having one shared buffer between all
	// call reduces the overhead of having to grow each time analyze is called.
	tmpLearnts []Literal

	// Used for clauses to explain themselves.
	tmpReason []Literal

	// Reason clauses touched while deriving the current learnt clause.
	analyzedReasons []*Clause

	// Scratch space for conflict clause minimization.
	tmpStack  []Literal
	tmpMarked []int

	// Scratch space for certification records.
	tmpDimacs []int

	// Test hook invoked with every learnt clause before backjumping.
	onLearnt func(lits []Literal, lbd int)
}

// watcher represents a clause attached to the watch list of a literal.
type watcher struct {
	// The watching clause to be propagated when the watched literal becomes
	// true.
	clause *Clause

	// Blocker is one of the clause's literals. If it is true, then there is
	// no need to propagate the clause. Note that the blocker literal must be
	// different from the watcher literal.
	blocker Literal
}

type Options struct {
	ClauseDecay        float64
	VariableDecay      float64
	VariableDecayMax   float64
	RewardMode         RewardMode
	PhaseSaving        bool
	StrategyAdaptation bool

	// Restart control: forcing fires when fastLBD*RestartLBDFactor exceeds
	// slowLBD, blocking when the trail grows past RestartBlockFactor times
	// its moving average. RestartStep is the minimum number of conflicts
	// between two restarts.
	RestartLBDFactor   float64
	RestartBlockFactor float64
	RestartStep        int64

	// ChronoBTGap enables chronological backtracking when the distance
	// between the conflicting level and the backjump level exceeds the gap.
	// A value of 0 disables the chronological variant.
	ChronoBTGap int

	MaxConflicts int64
	Timeout      time.Duration

	// Output receives the search progress report. A nil writer disables
	// reporting.
	Output io.Writer
}

var DefaultOptions = Options{
	ClauseDecay:        0.999,
	VariableDecay:      0.85,
	VariableDecayMax:   0.99,
	RewardMode:         EVSIDS,
	PhaseSaving:        true,
	StrategyAdaptation: true,
	RestartLBDFactor:   0.8,
	RestartBlockFactor: 1.4,
	RestartStep:        50,
	ChronoBTGap:        0,
	MaxConflicts:       -1,
	Timeout:            -1,
}

// NewDefaultSolver returns a solver configured with default options. This is
// equivalent to calling NewSolver with DefaultOptions.
func NewDefaultSolver() *Solver {
	return NewSolver(DefaultOptions)
}

func NewSolver(ops Options) *Solver {
	s := &Solver{
		clauseDecay: ops.ClauseDecay,
		clauseInc:   1,
		binary:      newBinaryLinks(),
		maxConflict: -1,
		timeout:     -1,
		seenVar:     &ResetSet{},
		output:      ops.Output,
		opts:        ops,
	}
	s.order = NewVarOrder(
		ops.RewardMode,
		ops.VariableDecay,
		ops.VariableDecayMax,
		ops.StrategyAdaptation,
		ops.PhaseSaving,
	)

	if ops.MaxConflicts >= 0 {
		s.hasStopCond = true
		s.maxConflict = ops.MaxConflicts
	}
	if ops.Timeout >= 0 {
		s.hasStopCond = true
		s.timeout = ops.Timeout
	}
	if s.output == nil {
		s.output = io.Discard
	}

	// Decision levels are bounded by the number of variables; slot 0 keeps
	// the scratch space non-empty for root level entries.
	s.lbdTemp = append(s.lbdTemp, 0)

	return s
}

// SetCertifier installs the proof sink. It must be called before Solve.
func (s *Solver) SetCertifier(c Certifier) {
	s.certifier = c
}

func (s *Solver) shouldStop() bool {
	if !s.hasStopCond {
		return false
	}
	if s.maxConflict >= 0 && s.maxConflict <= s.TotalConflicts {
		return true
	}
	if s.timeout >= 0 && s.timeout <= time.Since(s.startTime) {
		return true
	}

	return false
}

func (s *Solver) PositiveLiteral(varID int) Literal {
	return Literal(varID * 2)
}

func (s *Solver) NegativeLiteral(varID int) Literal {
	return s.PositiveLiteral(varID).Opposite()
}

func (s *Solver) NumVariables() int {
	return len(s.assigns) / 2
}

func (s *Solver) NumAssigns() int {
	return len(s.trail)
}

func (s *Solver) NumConstraints() int {
	return len(s.constraints)
}

func (s *Solver) NumLearnts() int {
	return len(s.learnts)
}

func (s *Solver) VarValue(x int) LBool {
	return s.assigns[s.PositiveLiteral(x)]
}

func (s *Solver) LitValue(l Literal) LBool {
	return s.assigns[l]
}

func (s *Solver) AddVariable() int {
	index := s.NumVariables()
	s.watchers = append(s.watchers, nil)
	s.watchers = append(s.watchers, nil)
	s.binary.expand()
	s.reason = append(s.reason, nil)
	s.level = append(s.level, -1)
	s.eliminated = append(s.eliminated, false)
	s.bestPhases = append(s.bestPhases, Unknown)
	s.lbdTemp = append(s.lbdTemp, 0)
	s.seenVar.Expand()

	// One for each literal.
	s.assigns = append(s.assigns, Unknown)
	s.assigns = append(s.assigns, Unknown)

	s.order.AddVar(0, false)
	return index
}

// Eliminate marks variable v as eliminated by an external preprocessor. An
// eliminated variable is never selected as a decision and does not count
// toward the full-assignment check. The variable must be unassigned and the
// solver at the root level.
func (s *Solver) Eliminate(v int) error {
	if s.decisionLevel() != 0 {
		return fmt.Errorf("can only eliminate variables at the root level")
	}
	if s.VarValue(v) != Unknown {
		return fmt.Errorf("cannot eliminate assigned variable %d", v)
	}
	if !s.eliminated[v] {
		s.eliminated[v] = true
		s.numEliminated++
	}
	return nil
}

// Watch registers clause c to be awaken when Literal watch is assigned to true.
func (s *Solver) Watch(c *Clause, watch Literal, blocker Literal) {
	s.watchers[watch] = append(s.watchers[watch], watcher{
		clause:  c,
		blocker: blocker,
	})
}

// Unwatch removes clause c from the list of watchers.
func (s *Solver) Unwatch(c *Clause, watch Literal) {
	j := 0
	for i := 0; i < len(s.watchers[watch]); i++ {
		if s.watchers[watch][i].clause != c {
			s.watchers[watch][j] = s.watchers[watch][i]
			j++
		}
	}
	s.watchers[watch] = s.watchers[watch][:j]
}

// AddClause adds an original clause to the solver. Tautologies are silently
// dropped, duplicate and already-false literals removed, unit clauses turned
// into root-level assignments. An empty clause makes the problem unsat.
func (s *Solver) AddClause(clause []Literal) error {
	if s.decisionLevel() != 0 {
		return fmt.Errorf("can only add clauses at the root level")
	}
	c, ok := s.newClause(clause, false)
	if c != nil {
		s.constraints = append(s.constraints, c)
	}
	if !ok {
		s.unsat = true
	}

	return nil
}

// newClause normalizes (for original clauses) and installs a clause. It
// returns the installed clause, or nil if the clause was absorbed (tautology,
// satisfied, unit, empty, or duplicate binary). The boolean is false if the
// clause makes the problem inconsistent.
func (s *Solver) newClause(tmpLiterals []Literal, learnt bool) (*Clause, bool) {
	size := len(tmpLiterals)

	if !learnt {
		seen := map[Literal]struct{}{}

		for i := size - 1; i >= 0; i-- {
			// If the opposite literal is in the clause, then the clause is
			// always true.
			if _, ok := seen[tmpLiterals[i].Opposite()]; ok {
				return nil, true
			}

			// Remove the literal if it is already present.
			if _, ok := seen[tmpLiterals[i]]; ok {
				size--
				tmpLiterals[i], tmpLiterals[size] = tmpLiterals[size], tmpLiterals[i]
				continue
			}

			seen[tmpLiterals[i]] = struct{}{}

			switch s.LitValue(tmpLiterals[i]) {
			case True:
				return nil, true // clause is always true
			case False:
				size--
				tmpLiterals[i], tmpLiterals[size] = tmpLiterals[size], tmpLiterals[i]
			}
		}

		tmpLiterals = tmpLiterals[:size]
	}

	switch size {
	case 0:
		// Empty clauses cannot be valid.
		return nil, false
	case 1:
		// Directly enqueue unit facts.
		return nil, s.enqueue(tmpLiterals[0], 0, nil)
	case 2:
		if dup := s.binary.lookup(tmpLiterals[0], tmpLiterals[1]); dup != nil {
			return nil, true
		}
		c := s.buildClause(tmpLiterals, learnt)
		s.binary.add(c)
		return c, true
	default:
		c := s.buildClause(tmpLiterals, learnt)
		s.Watch(c, c.literals[0].Opposite(), c.literals[1])
		s.Watch(c, c.literals[1].Opposite(), c.literals[0])
		return c, true
	}
}

func (s *Solver) buildClause(literals []Literal, learnt bool) *Clause {
	c := &Clause{
		prevPos:  2, // no previous literal
		literals: make([]Literal, len(literals)),
		id:       s.nextCID,
	}
	s.nextCID++
	copy(c.literals, literals)
	if learnt {
		c.statusMask |= statusLearnt
	}
	return c
}

// Simplify simplifies the clause DB as well as the problem clauses according
// to the root-level assignments. Clauses that are satisfied at the root-level
// are removed.
func (s *Solver) Simplify() bool {
	if l := s.decisionLevel(); l != 0 {
		log.Fatalf("Simplify called on non root-level: %d", l)
	}
	if s.qHead != len(s.trail) {
		log.Fatal("pending propagations when calling Simplify")
	}

	if s.unsat || s.Propagate() != nil {
		s.unsat = true
		return false
	}

	s.simplifyPtr(&s.learnts)
	s.simplifyPtr(&s.constraints) // could be turned off

	return true
}

// simplifyPtr simplifies the clauses in the given slice and remove clauses
// that are already satisfied.
func (s *Solver) simplifyPtr(clausesPtr *[]*Clause) {
	clauses := *clausesPtr
	j := 0
	for i := 0; i < len(clauses); i++ {
		c := clauses[i]

		var before []Literal
		if s.certifier != nil {
			before = append(before, c.literals...)
		}

		if c.Simplify(s) {
			// Root assignments outlive their reason clause.
			if c.locked(s) {
				s.reason[c.literals[0].VarID()] = nil
			}
			s.certifyDelete(c.literals)
			c.Delete(s)
			continue
		}

		if len(before) > 0 && len(c.literals) < len(before) {
			s.certifyAdd(c.literals)
			s.certifyDelete(before)
		}

		// A long clause strengthened down to two literals moves to the
		// binary index.
		if len(c.literals) == 2 && cap(c.literals) > 2 {
			if s.migrateToBinary(c) {
				continue
			}
		}

		clauses[j] = c
		j++
	}
	*clausesPtr = clauses[:j]
}

// migrateToBinary moves a strengthened clause from the watcher lists to the
// binary index. It returns true if the clause was dropped as a duplicate.
func (s *Solver) migrateToBinary(c *Clause) bool {
	s.Unwatch(c, c.literals[0].Opposite())
	s.Unwatch(c, c.literals[1].Opposite())
	if s.binary.lookup(c.literals[0], c.literals[1]) != nil {
		s.certifyDelete(c.literals)
		c.statusMask |= statusDeleted
		c.literals = nil
		return true
	}
	s.binary.add(c)
	return false
}

func (s *Solver) decisionLevel() int {
	return len(s.trailLim)
}

// Solve searches for a model of the current set of clauses. It returns True
// with a recorded model if the problem is satisfiable, False if it is
// unsatisfiable, and Unknown if a stop condition interrupted the search.
// Solve can be called again after new clauses have been added (e.g. to
// enumerate models by refutation).
func (s *Solver) Solve() LBool {
	s.startTime = time.Now()
	s.restart = newRestarter(s.opts)
	s.stage = newStageManager(s.NumVariables())

	s.printSeparator()
	s.printSearchHeader()
	s.printSeparator()

	status := s.search()

	s.printSearchStats()
	s.printSeparator()

	s.cancelUntil(0)
	return status
}

// search runs the CDCL loop until the problem is decided or a stop condition
// fires.
func (s *Solver) search() LBool {
	if s.unsat {
		s.certifyAdd(nil)
		return False
	}

	for !s.shouldStop() {
		if s.TotalIterations%10000 == 0 {
			s.printSearchStats()
		}
		s.TotalIterations++

		if conflict := s.Propagate(); conflict != nil {
			s.TotalConflicts++

			if s.decisionLevel() == 0 {
				s.unsat = true
				s.certifyAdd(nil)
				return False
			}

			learnt, btLevel, lbd := s.analyze(conflict)
			if s.onLearnt != nil {
				s.onLearnt(learnt, lbd)
			}
			s.restart.onConflict(lbd, len(s.trail))

			target := btLevel
			if gap := s.opts.ChronoBTGap; gap > 0 && s.decisionLevel()-1-btLevel > gap {
				target = s.decisionLevel() - 1
			}
			s.cancelUntil(target)
			s.record(learnt, lbd, btLevel)

			s.DecayClaActivity()
			s.order.OnConflict()

			if s.stage.stageEnded(s.TotalConflicts) {
				s.stageBoundary()
			}
			continue
		}

		// No Conflict
		// -----------

		if s.decisionLevel() == 0 {
			if !s.Simplify() {
				s.certifyAdd(nil)
				return False
			}
		}

		if s.NumAssigns() == s.NumVariables()-s.numEliminated { // solution found
			s.saveModel()
			s.cancelUntil(0)
			return True
		}

		if s.NumAssigns() > s.bestAssigns {
			s.snapshotBestPhases()
		}

		if s.restart.shouldRestart(s.TotalConflicts) {
			s.TotalRestarts++
			s.cancelUntil(0)
			continue
		}

		l := s.order.NextDecision(s)
		s.TotalDecisions++
		s.assume(l)
	}

	return Unknown
}

// record installs a learnt clause and enqueues its asserting literal at the
// given assertion level.
func (s *Solver) record(lits []Literal, lbd, assertLevel int) {
	s.certifyAdd(lits)

	var c *Clause
	if len(lits) >= 2 {
		if len(lits) == 2 {
			// An identical binary clause may already exist; reuse it as the
			// reason instead of installing a duplicate. Reasons keep their
			// implied literal at position 0.
			if c = s.binary.lookup(lits[0], lits[1]); c != nil && c.literals[0] != lits[0] {
				c.literals[0], c.literals[1] = c.literals[1], c.literals[0]
			}
		}
		if c == nil {
			c, _ = s.newClause(lits, true)
			c.lbd = lbd
			s.BumpClaActivity(c)
			s.learnts = append(s.learnts, c)
		}
	}
	s.enqueue(lits[0], assertLevel, c)
}

func (s *Solver) BumpClaActivity(c *Clause) {
	c.activity += s.clauseInc

	if c.activity > 1e100 {
		s.clauseInc *= 1e-100 // important to keep proportions
		for _, l := range s.learnts {
			l.activity *= 1e-100
		}
	}
}

func (s *Solver) DecayClaActivity() {
	s.clauseInc /= s.clauseDecay
}

// bumpReason rewards a clause for participating in conflict analysis and
// opportunistically tightens its LBD. A learnt clause whose LBD drops to 2 or
// below becomes permanent.
func (s *Solver) bumpReason(c *Clause) {
	if c.isLearnt() {
		s.BumpClaActivity(c)
		c.setUsed()
		if newLBD := s.computeLBD(c.literals); newLBD < c.lbd {
			c.lbd = newLBD
			if newLBD <= 2 {
				c.setProtected()
			}
		}
	}
	s.analyzedReasons = append(s.analyzedReasons, c)
}

// enqueue records the assignment of literal l at the given level with the
// given reason clause. It returns false if l is already false (conflicting
// assignment). The reason's first literal must be l.
func (s *Solver) enqueue(l Literal, lvl int, from *Clause) bool {
	switch v := s.LitValue(l); v {
	case False:
		return false // conflicting assignment
	case True:
		return true // already assigned
	default:
		// New fact, store it.
		varID := l.VarID()
		s.assigns[l] = True
		s.assigns[l.Opposite()] = False
		s.level[varID] = lvl
		s.reason[varID] = from
		s.trail = append(s.trail, l)
		s.order.OnAssign(varID)
		return true
	}
}

func (s *Solver) undoOne() {
	l := s.trail[len(s.trail)-1]
	v := l.VarID()

	s.order.Reinsert(v, s.VarValue(v))
	s.assigns[l] = Unknown
	s.assigns[l.Opposite()] = Unknown
	s.reason[v] = nil
	s.level[v] = -1

	s.trail = s.trail[:len(s.trail)-1]
}

func (s *Solver) assume(l Literal) bool {
	s.trailLim = append(s.trailLim, len(s.trail))
	return s.enqueue(l, s.decisionLevel(), nil)
}

func (s *Solver) cancel() {
	c := len(s.trail) - s.trailLim[len(s.trailLim)-1]
	for ; c != 0; c-- {
		s.undoOne()
	}
	s.trailLim = s.trailLim[:len(s.trailLim)-1]
}

// cancelUntil undoes all assignments above the given level, in reverse trail
// order so that phase saving captures the most recent values.
func (s *Solver) cancelUntil(level int) {
	for s.decisionLevel() > level {
		s.cancel()
	}
	if s.qHead > len(s.trail) {
		s.qHead = len(s.trail)
	}
}

// snapshotBestPhases remembers the deepest conflict-free assignment seen so
// far; it becomes the rephasing target at the next cycle boundary.
func (s *Solver) snapshotBestPhases() {
	s.bestAssigns = s.NumAssigns()
	for v := range s.bestPhases {
		s.bestPhases[v] = s.VarValue(v)
	}
}

func (s *Solver) stageBoundary() {
	newCycle := s.stage.prepareNewStage(s.TotalConflicts)
	if len(s.learnts) > s.stage.currentSpan() {
		s.ReduceDB(s.stage.numReducible())
	}
	if newCycle && s.opts.StrategyAdaptation {
		s.order.RephaseFrom(s.bestPhases)
	}
}

func (s *Solver) saveModel() {
	model := make([]bool, s.NumVariables())
	for i := range model {
		lb := s.VarValue(i)
		if lb == Unknown {
			if s.eliminated[i] {
				continue // free value for eliminated variables
			}
			panic("not a model")
		}
		model[i] = lb == True
	}
	s.Models = append(s.Models, model)
}

// Model returns the last recorded model, or nil if none was found yet.
func (s *Solver) Model() []bool {
	if len(s.Models) == 0 {
		return nil
	}
	return s.Models[len(s.Models)-1]
}

func (s *Solver) certifyAdd(lits []Literal) {
	if s.certifier == nil {
		return
	}
	s.certifier.Add(s.toDimacs(lits))
}

func (s *Solver) certifyDelete(lits []Literal) {
	if s.certifier == nil {
		return
	}
	s.certifier.Delete(s.toDimacs(lits))
}

func (s *Solver) toDimacs(lits []Literal) []int {
	s.tmpDimacs = s.tmpDimacs[:0]
	for _, l := range lits {
		s.tmpDimacs = append(s.tmpDimacs, l.Dimacs())
	}
	return s.tmpDimacs
}
