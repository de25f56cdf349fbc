package sat

// Propagate consumes the unpropagated suffix of the trail and derives all
// implied assignments until fixpoint. It returns the conflicting clause if
// one is found, nil otherwise. Binary clauses are resolved through the
// binary-link index before the watcher lists are touched.
func (s *Solver) Propagate() *Clause {
	for s.qHead < len(s.trail) {
		p := s.trail[s.qHead]
		s.qHead++
		s.TotalPropagations++

		// Binary pass. Links carry the other literal so that no clause needs
		// to be loaded unless it actually propagates.
		for _, link := range s.binary.connectedTo(p) {
			switch s.LitValue(link.other) {
			case True:
				// satisfied
			case False:
				return link.clause
			default:
				c := link.clause
				if c.literals[0] != link.other {
					c.literals[0], c.literals[1] = c.literals[1], c.literals[0]
				}
				s.enqueue(link.other, s.level[p.VarID()], c)
			}
		}

		// Long-clause pass over the watcher list of p.
		s.tmpWatchers = s.tmpWatchers[:0]
		s.tmpWatchers = append(s.tmpWatchers, s.watchers[p]...)
		s.watchers[p] = s.watchers[p][:0]

		for i, w := range s.tmpWatchers {
			// No need to propagate the clause if its blocker is true. This
			// block is not necessary for propagation to behave properly.
			// However, it helps to significantly speed-up computation by
			// avoiding loading clauses (in memory) that do not need to be
			// propagated. Note that this alters the order in which clauses
			// are propagated and can thus yield different conflict analysis
			// and learnt clauses.
			if s.LitValue(w.blocker) == True {
				s.watchers[p] = append(s.watchers[p], w)
				continue
			}

			if w.clause.propagate(s, p) {
				continue
			}

			// Constraint is conflicting, copy remaining watchers
			// and return the constraint.
			s.watchers[p] = append(s.watchers[p], s.tmpWatchers[i+1:]...)
			return s.tmpWatchers[i].clause
		}
	}

	return nil
}

// implicationLevel returns the level at which the unit literal of clause c
// (at position 0) is to be assigned. Without chronological backtracking this
// is the current decision level; with it, the implied level is the highest
// level among the falsified literals, which may be lower.
func (s *Solver) implicationLevel(c *Clause) int {
	if s.opts.ChronoBTGap == 0 {
		return s.decisionLevel()
	}
	max := 0
	for _, l := range c.literals[1:] {
		if lv := s.level[l.VarID()]; lv > max {
			max = lv
		}
	}
	return max
}
