package sat

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slate-solver/slate/internal/drat"
)

func TestCertification_UNSATProofEndsWithEmptyClause(t *testing.T) {
	var buf bytes.Buffer
	w := drat.NewWriter(&buf)

	nVars, clauses := php(3, 2)
	s := NewDefaultSolver()
	s.SetCertifier(w)
	loadClauses(t, s, nVars, clauses)

	require.Equal(t, False, s.Solve())
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "0", lines[len(lines)-1], "proof must end with the empty clause")
	assert.GreaterOrEqual(t, w.NumAdded, int64(1))
}

func TestCertification_DeletionsAreRecorded(t *testing.T) {
	var buf bytes.Buffer
	w := drat.NewWriter(&buf)

	s := newTestSolver(t, 3)
	s.SetCertifier(w)
	addLearnt(t, s, []int{1, 2, 3}, 30, 0)
	s.ReduceDB(1)

	require.NoError(t, w.Flush())
	assert.Equal(t, "d 1 2 3 0\n", buf.String())
	assert.Equal(t, int64(1), w.NumDeleted)
}

func TestCertification_SATHasNoEmptyClause(t *testing.T) {
	var buf bytes.Buffer
	w := drat.NewWriter(&buf)

	s := NewDefaultSolver()
	s.SetCertifier(w)
	loadClauses(t, s, 2, [][]int{{1, 2}})

	require.Equal(t, True, s.Solve())
	require.NoError(t, w.Flush())

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.NotEqual(t, "0", line)
	}
}
