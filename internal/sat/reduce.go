package sat

import "sort"

// ReduceDB discards up to budget learnt clauses, keeping the ones most
// likely to be useful. Clauses currently serving as a reason, protected
// clauses, clauses with an LBD of at most 2, and clauses touched since the
// last reduction are never discarded.
func (s *Solver) ReduceDB(budget int) {
	if budget <= 0 || len(s.learnts) == 0 {
		return
	}

	// Retention order: best clauses first. Ties are broken by insertion
	// order to keep runs reproducible.
	ordered := make([]*Clause, len(s.learnts))
	copy(ordered, s.learnts)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].lbd != ordered[j].lbd {
			return ordered[i].lbd < ordered[j].lbd
		}
		if ordered[i].activity != ordered[j].activity {
			return ordered[i].activity > ordered[j].activity
		}
		return ordered[i].id < ordered[j].id
	})

	removed := 0
	for i := len(ordered) - 1; i >= 0 && removed < budget; i-- {
		c := ordered[i]
		if c.locked(s) || c.isProtected() || c.isUsed() || c.isDerive20() || c.lbd <= 2 {
			continue
		}
		s.certifyDelete(c.literals)
		c.Delete(s)
		removed++
	}

	j := 0
	for _, c := range s.learnts {
		if c.isDeleted() {
			continue
		}
		c.clearUsed()
		c.clearDerive20()
		s.learnts[j] = c
		j++
	}
	s.learnts = s.learnts[:j]
	s.TotalReductions++
}
