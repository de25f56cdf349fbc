package sat

// analyze derives a learnt clause from the given conflicting clause using
// first unique implication point resolution. It returns the learnt clause
// (asserting literal at position 0, highest-level remaining literal at
// position 1), the backjump level, and the clause's LBD. It must only be
// called on a conflict above the root level.
//
// The learnt clause is stored in a buffer shared by all calls: it is only
// valid until the next call to analyze.
func (s *Solver) analyze(confl *Clause) ([]Literal, int, int) {
	// Current number of "implication" nodes encountered in the exploration of
	// the decision level. A value of 0 indicates that the exploration has
	// reached a single implication point.
	nImplicationPoints := 0

	// Empty the buffer of literals in which the learnt clause will be stored.
	// Note that the first literal is reserved for the FUIP which is set at the
	// end of this function.
	s.tmpLearnts = s.tmpLearnts[:0]
	s.tmpLearnts = append(s.tmpLearnts, -1)

	s.analyzedReasons = s.analyzedReasons[:0]

	// Next literal to look at. This is used to iterate over the trail without
	// actually undoing the literal assignments.
	nextLiteral := len(s.trail) - 1

	l := Literal(-1) // unknown literal used to represent the conflict
	s.seenVar.Clear()

	for {
		var reason []Literal
		if l == -1 {
			reason = confl.explainConflict(s)
		} else {
			reason = confl.explainAssign(s)
		}

		for _, q := range reason {
			v := q.VarID()
			if s.seenVar.Contains(v) || s.level[v] == 0 {
				continue
			}

			s.seenVar.Add(v)
			s.order.OnConflictSeen(v)
			if s.level[v] == s.decisionLevel() {
				nImplicationPoints++
				continue
			}

			s.tmpLearnts = append(s.tmpLearnts, q.Opposite())
		}

		// Select next literal to look at. Only literals of the conflicting
		// level are resolved on; with chronological backtracking the trail
		// may interleave levels, hence the explicit level check.
		for {
			l = s.trail[nextLiteral]
			nextLiteral--
			v := l.VarID()
			if s.seenVar.Contains(v) && s.level[v] == s.decisionLevel() {
				confl = s.reason[v]
				break
			}
		}

		nImplicationPoints--
		if nImplicationPoints <= 0 {
			break
		}
	}

	// Add literal corresponding to the FUIP.
	s.tmpLearnts[0] = l.Opposite()

	s.minimizeLearnt()

	learnt := s.tmpLearnts

	// Place the literal with the highest level at position 1: it is the
	// second watched literal and defines the backjump level.
	btLevel := 0
	if len(learnt) > 1 {
		maxI := 1
		for i := 2; i < len(learnt); i++ {
			if s.level[learnt[i].VarID()] > s.level[learnt[maxI].VarID()] {
				maxI = i
			}
		}
		learnt[1], learnt[maxI] = learnt[maxI], learnt[1]
		btLevel = s.level[learnt[1].VarID()]
	}

	lbd := s.computeLBD(learnt)
	if lbd <= derive20LBD {
		for _, c := range s.analyzedReasons {
			c.setDerive20()
		}
	}

	return learnt, btLevel, lbd
}

// Clauses that help derive a learnt clause of at most this LBD are pinned
// for the next reduction round.
const derive20LBD = 20

// minimizeLearnt removes the learnt literals that are implied by the rest of
// the clause through their reason graph.
func (s *Solver) minimizeLearnt() {
	j := 1
	for i := 1; i < len(s.tmpLearnts); i++ {
		if !s.litRedundant(s.tmpLearnts[i]) {
			s.tmpLearnts[j] = s.tmpLearnts[i]
			j++
		}
	}
	s.tmpLearnts = s.tmpLearnts[:j]
}

// litRedundant returns true if the given learnt literal is implied by the
// other literals of the learnt clause. The check walks the literal's reason
// graph and succeeds if every path terminates on a seen variable or on the
// root level; it aborts as soon as an unseen decision is reached. Variables
// proved redundant stay marked so later checks can reuse them.
func (s *Solver) litRedundant(lit Literal) bool {
	if s.reason[lit.VarID()] == nil {
		return false
	}

	s.tmpStack = s.tmpStack[:0]
	s.tmpStack = append(s.tmpStack, lit)
	s.tmpMarked = s.tmpMarked[:0]

	for len(s.tmpStack) > 0 {
		top := s.tmpStack[len(s.tmpStack)-1]
		s.tmpStack = s.tmpStack[:len(s.tmpStack)-1]

		c := s.reason[top.VarID()]
		for _, q := range c.literals[1:] {
			v := q.VarID()
			if s.level[v] == 0 || s.seenVar.Contains(v) {
				continue
			}
			if s.reason[v] == nil {
				// Reached a decision that is not part of the learnt clause:
				// undo the speculative marks.
				for _, w := range s.tmpMarked {
					s.seenVar.Remove(w)
				}
				return false
			}
			s.seenVar.Add(v)
			s.tmpMarked = append(s.tmpMarked, v)
			s.tmpStack = append(s.tmpStack, q)
		}
	}

	return true
}

// computeLBD returns the number of distinct decision levels among the given
// literals. The per-level scratch array is invalidated with an epoch stamp
// instead of being cleared.
func (s *Solver) computeLBD(lits []Literal) int {
	s.lbdKey++
	key := s.lbdKey
	cnt := 0
	for _, l := range lits {
		lv := s.level[l.VarID()]
		if s.lbdTemp[lv] != key {
			s.lbdTemp[lv] = key
			cnt++
		}
	}
	return cnt
}
