package main

import (
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/slate-solver/slate/internal/dimacs"
	"github.com/slate-solver/slate/internal/sat"
)

// This test suite verifies that the solver finds the exact set of models of
// each instance under testdata. The expected sets are recomputed by
// exhaustive enumeration, which keeps the test cases small but
// self-checking.

var testdataDir = "testdata"

// listInstances returns the instance files contained in the file tree rooted
// at the given directory.
func listInstances(dir string) ([]string, error) {
	instances := []string{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".cnf") {
			return nil
		}
		instances = append(instances, path)
		return nil
	})
	return instances, err
}

// toString returns a binary string representation of the given model. For
// example, model [true, false, false] results in string "100".
func toString(model []bool) string {
	s := make([]byte, 0, len(model))
	for _, b := range model {
		if b {
			s = append(s, '1')
		} else {
			s = append(s, '0')
		}
	}
	return string(s)
}

// toSet converts a slice of models into a set of models represented as
// binary strings (see toString).
func toSet(s [][]bool) map[string]struct{} {
	set := map[string]struct{}{}
	for _, m := range s {
		set[toString(m)] = struct{}{}
	}
	return set
}

// solveAll returns an unordered list of all the instance's models.
func solveAll(t *testing.T, s *sat.Solver) [][]bool {
	t.Helper()
	for s.Solve() == sat.True {
		// Add a new clause to forbid the last model found. Note that literals
		// must be flipped: !(a ^ b ^ c) corresponds to (!a v !b v !c).
		model := s.Models[len(s.Models)-1]
		modelClause := make([]sat.Literal, len(model))
		for i, b := range model {
			if b { // literals are flipped
				modelClause[i] = sat.NegativeLiteral(i)
			} else {
				modelClause[i] = sat.PositiveLiteral(i)
			}
		}
		if err := s.AddClause(modelClause); err != nil {
			t.Fatalf("could not refute model: %s", err)
		}
	}
	return s.Models
}

// allModels enumerates the instance's models exhaustively.
func allModels(inst *dimacs.Instance) [][]bool {
	models := [][]bool{}
	model := make([]bool, inst.Variables)
	for bits := 0; bits < 1<<inst.Variables; bits++ {
		for v := range model {
			model[v] = bits&(1<<v) != 0
		}
		if dimacs.Validate(inst, model) == -1 {
			m := make([]bool, len(model))
			copy(m, model)
			models = append(models, m)
		}
	}
	return models
}

// TestSolveAll verifies that the solver finds all the models of every
// testdata instance. Test cases are evaluated in parallel.
func TestSolveAll(t *testing.T) {
	instances, err := listInstances(testdataDir)
	if err != nil {
		t.Fatalf("Error listing instances: %s", err)
	}
	if len(instances) == 0 {
		t.Fatal("no instances found")
	}

	for _, instanceFile := range instances {
		instanceFile := instanceFile
		t.Run(filepath.Base(instanceFile), func(t *testing.T) {
			t.Parallel()

			inst, err := dimacs.Parse(instanceFile, false)
			if err != nil {
				t.Fatalf("Instance parsing error: %s", err)
			}

			s := sat.NewDefaultSolver()
			if err := dimacs.Instantiate(s, inst); err != nil {
				t.Fatalf("Instance loading error: %s", err)
			}

			got := solveAll(t, s)
			want := allModels(inst)

			if len(got) != len(want) {
				t.Errorf("Incorrect number of models: got %d, want %d", len(got), len(want))
			}
			if !cmp.Equal(toSet(got), toSet(want)) {
				t.Errorf("Model mismatch: %s", cmp.Diff(toSet(want), toSet(got)))
			}
		})
	}
}
