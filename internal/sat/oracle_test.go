package sat

import (
	"math/rand"
	"testing"

	gini "github.com/go-air/gini"
	"github.com/go-air/gini/z"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomInstance generates a random CNF over nVars variables. Clauses may
// contain duplicate or opposite literals on purpose: the solver is expected
// to normalize them away.
func randomInstance(rng *rand.Rand, nVars, nClauses, width int) [][]int {
	clauses := make([][]int, nClauses)
	for i := range clauses {
		clause := make([]int, width)
		for j := range clause {
			v := 1 + rng.Intn(nVars)
			if rng.Intn(2) == 0 {
				v = -v
			}
			clause[j] = v
		}
		clauses[i] = clause
	}
	return clauses
}

// referenceSolve decides the instance with the gini solver.
func referenceSolve(clauses [][]int) bool {
	g := gini.New()
	for _, clause := range clauses {
		for _, l := range clause {
			g.Add(z.Dimacs2Lit(l))
		}
		g.Add(z.LitNull)
	}
	return g.Solve() == 1
}

func TestSolve_AgainstReference(t *testing.T) {
	for seed := int64(0); seed < 200; seed++ {
		rng := rand.New(rand.NewSource(seed))
		nVars := 1 + rng.Intn(20)
		nClauses := 1 + rng.Intn(4*nVars+1)
		clauses := randomInstance(rng, nVars, nClauses, 3)

		s := NewDefaultSolver()
		loadClauses(t, s, nVars, clauses)
		status := s.Solve()
		require.NotEqual(t, Unknown, status, "seed %d", seed)

		want := referenceSolve(clauses)
		require.Equal(t, want, status == True, "seed %d: %v", seed, clauses)

		if status == True {
			assert.True(t, satisfies(clauses, s.Model()), "seed %d", seed)
		} else if nVars <= 12 {
			assert.False(t, bruteForce(nVars, clauses), "seed %d", seed)
		}
	}
}

func TestSolve_PhaseTransitionRatio(t *testing.T) {
	// Random 3-SAT near the phase transition (ratio ~4.2).
	rng := rand.New(rand.NewSource(7))
	nVars := 50
	clauses := randomInstance(rng, nVars, 210, 3)

	s := NewDefaultSolver()
	loadClauses(t, s, nVars, clauses)
	status := s.Solve()
	require.NotEqual(t, Unknown, status)

	assert.Equal(t, referenceSolve(clauses), status == True)
	if status == True {
		assert.True(t, satisfies(clauses, s.Model()))
	}
}

func TestSolve_ReferenceAgreementWithWiderClauses(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		rng := rand.New(rand.NewSource(1000 + seed))
		nVars := 5 + rng.Intn(15)
		nClauses := 1 + rng.Intn(6*nVars)
		width := 2 + rng.Intn(4)
		clauses := randomInstance(rng, nVars, nClauses, width)

		s := NewDefaultSolver()
		loadClauses(t, s, nVars, clauses)
		status := s.Solve()
		require.NotEqual(t, Unknown, status, "seed %d", seed)
		require.Equal(t, referenceSolve(clauses), status == True, "seed %d", seed)
	}
}
