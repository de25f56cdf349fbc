package sat

import (
	"strings"
)

type status uint8

const (
	statusDeleted status = 1 << iota
	statusLearnt
	statusProtected
	statusUsed
	statusDerive20
)

type Clause struct {
	activity float64

	// The clause's literals. The slice contains at least two literals if the
	// clause is active, it is nil if the clause has been marked as deleted.
	literals []Literal

	// This is used to speed-up the search for a new literal to watch by
	// starting the search from the position at which the previous watched
	// literal was swapped in (if such literal exists). This value must always
	// be in [2, len(literals) - 1].
	prevPos int

	// The literal block distance used to estimate the quality of the clause.
	lbd int

	// Installation order, used as a deterministic tie breaker.
	id int

	statusMask status
}

func (c *Clause) isLearnt() bool {
	return c.statusMask&statusLearnt != 0
}

func (c *Clause) isDeleted() bool {
	return c.statusMask&statusDeleted != 0
}

// A protected clause is never discarded by clause DB reductions. Learnt
// clauses whose LBD drops to the permanent threshold are promoted this way.
func (c *Clause) isProtected() bool {
	return c.statusMask&statusProtected != 0
}

func (c *Clause) setProtected() {
	c.statusMask |= statusProtected
}

func (c *Clause) isUsed() bool {
	return c.statusMask&statusUsed != 0
}

func (c *Clause) setUsed() {
	c.statusMask |= statusUsed
}

func (c *Clause) clearUsed() {
	c.statusMask &= ^statusUsed
}

// The derive20 flag marks clauses that served as reasons while deriving a
// low-LBD learnt clause. It pins the clause for one reduction round.
func (c *Clause) isDerive20() bool {
	return c.statusMask&statusDerive20 != 0
}

func (c *Clause) setDerive20() {
	c.statusMask |= statusDerive20
}

func (c *Clause) clearDerive20() {
	c.statusMask &= ^statusDerive20
}

// locked reports whether the clause is currently the reason of an assignment
// on the trail. Locked clauses must not be deleted.
func (c *Clause) locked(s *Solver) bool {
	return s.reason[c.literals[0].VarID()] == c
}

// Delete marks the clause as deleted and detaches it from the propagation
// indexes. The caller is responsible for emitting the certification record
// before calling Delete as the literals are dropped here.
func (c *Clause) Delete(s *Solver) {
	c.statusMask |= statusDeleted

	if len(c.literals) == 2 {
		s.binary.remove(c)
	} else {
		s.Unwatch(c, c.literals[0].Opposite())
		s.Unwatch(c, c.literals[1].Opposite())
	}

	// Cut the reference to the slice of literals so that it can be garbage
	// collected even if the clause itself is still referenced.
	c.literals = nil
}

// Simplify removes the literals that are false at the root level and returns
// true if the clause is satisfied at the root level. It must only be called
// at decision level 0 with an empty propagation queue.
func (c *Clause) Simplify(s *Solver) bool {
	k := 0
	for _, lit := range c.literals {
		switch s.LitValue(lit) {
		case True:
			return true
		case False:
			// discard the literal.
		case Unknown:
			c.literals[k] = lit
			k++
		}
	}
	c.literals = c.literals[:k]
	if c.prevPos >= k {
		c.prevPos = 2
	}
	return false
}

// propagate is called when watched literal l was assigned true, i.e. one of
// the clause's two watched literals just became false. It restores the
// watching invariant, possibly enqueuing an implication. It returns false if
// the clause is conflicting.
func (c *Clause) propagate(s *Solver, l Literal) bool {
	// Make sure that the triggering literal is c.literals[1]. This simplifies
	// the rest of this function as c.literals[0] is always the literal to be
	// potentially enqueued (if all other literals are false).
	opp := l.Opposite()
	if c.literals[0] == opp {
		c.literals[0] = c.literals[1]
		c.literals[1] = opp
	}

	// If c.literals[0] is True, then the clause is already true.
	if s.LitValue(c.literals[0]) == True {
		s.Watch(c, l, c.literals[0])
		return true
	}

	// Look for a new literal to watch, starting from the position at which
	// the previous search stopped. If a true literal is found the clause is
	// already satisfied and no propagation is required.

	// Reset the position to start the search from if it is not valid anymore.
	// This can happen if the previous watched literal was removed or moved
	// during a clause simplification.
	if c.prevPos >= len(c.literals) {
		c.prevPos = 2
	}
	for i, lit := range c.literals[c.prevPos:] {
		if s.LitValue(lit) != False {
			c.prevPos += i
			c.literals[1] = lit
			c.literals[c.prevPos] = opp
			s.Watch(c, lit.Opposite(), c.literals[0])
			return true
		}
	}
	for i, lit := range c.literals[2:c.prevPos] {
		if s.LitValue(lit) != False {
			c.prevPos = i + 2
			c.literals[1] = lit
			c.literals[c.prevPos] = opp
			s.Watch(c, lit.Opposite(), c.literals[0])
			return true
		}
	}

	// All literals in literals[1:] are false: the clause is unit (or
	// conflicting, which enqueue detects on the opposite assignment).
	s.Watch(c, l, c.literals[0])
	return s.enqueue(c.literals[0], s.implicationLevel(c), c)
}

// explainConflict writes the negation of every literal to the solver's
// shared reason buffer.
func (c *Clause) explainConflict(s *Solver) []Literal {
	s.tmpReason = s.tmpReason[:0]
	for _, l := range c.literals {
		s.tmpReason = append(s.tmpReason, l.Opposite())
	}
	s.bumpReason(c)
	return s.tmpReason
}

// explainAssign is like explainConflict but skips the implied literal which
// is always at position 0 of a reason clause.
func (c *Clause) explainAssign(s *Solver) []Literal {
	s.tmpReason = s.tmpReason[:0]
	for _, l := range c.literals[1:] {
		s.tmpReason = append(s.tmpReason, l.Opposite())
	}
	s.bumpReason(c)
	return s.tmpReason
}

func (c *Clause) String() string {
	if len(c.literals) == 0 {
		return "Clause[]"
	}
	sb := strings.Builder{}
	sb.WriteString("Clause[")
	sb.WriteString(c.literals[0].String())
	for _, l := range c.literals[1:] {
		sb.WriteByte(' ')
		sb.WriteString(l.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
