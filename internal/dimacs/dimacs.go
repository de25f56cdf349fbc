// Package dimacs loads DIMACS CNF instances into the solver and emits the
// DIMACS-style result certificate.
package dimacs

import (
	"compress/gzip"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rhartert/dimacs"
	"github.com/sirupsen/logrus"

	"github.com/slate-solver/slate/internal/sat"
)

// Instance is a parsed CNF formula. Clauses hold non-zero DIMACS literals.
type Instance struct {
	Variables int
	Clauses   [][]int
}

func reader(filename string, gzipped bool) (io.ReadCloser, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	rc := io.ReadCloser(file)
	if gzipped {
		rc, err = gzip.NewReader(rc)
		if err != nil {
			file.Close()
			return nil, err
		}
	}
	return rc, nil
}

// Parse reads the DIMACS CNF file and returns the parsed instance.
func Parse(filename string, gzipped bool) (*Instance, error) {
	rc, err := reader(filename, gzipped)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading file %q", filename)
	}
	defer rc.Close()

	b := &builder{}
	if err := dimacs.ReadBuilder(rc, b); err != nil {
		return nil, errors.Wrapf(err, "error parsing file %q", filename)
	}
	if !b.sawProblem {
		return nil, errors.Errorf("file %q has no problem line", filename)
	}

	logrus.WithFields(logrus.Fields{
		"variables": b.instance.Variables,
		"clauses":   len(b.instance.Clauses),
	}).Debug("parsed instance")

	return &b.instance, nil
}

// builder implements dimacs.Builder and accumulates the instance.
type builder struct {
	instance   Instance
	sawProblem bool
}

func (b *builder) Problem(problem string, nVars int, nClauses int) error {
	if problem != "cnf" {
		return errors.Errorf("instances of type %q are not supported", problem)
	}
	if nVars < 0 {
		return errors.Errorf("invalid number of variables: %d", nVars)
	}
	b.sawProblem = true
	b.instance.Variables = nVars
	b.instance.Clauses = make([][]int, 0, nClauses)
	return nil
}

func (b *builder) Clause(tmpClause []int) error {
	clause := make([]int, len(tmpClause))
	for i, l := range tmpClause {
		v := l
		if v < 0 {
			v = -v
		}
		if v == 0 || v > b.instance.Variables {
			return errors.Errorf("literal %d out of range (%d variables declared)", l, b.instance.Variables)
		}
		clause[i] = l
	}
	b.instance.Clauses = append(b.instance.Clauses, clause)
	return nil
}

func (b *builder) Comment(_ string) error {
	return nil // ignore comments
}

// Instantiate declares the instance's variables and clauses in the given
// solver.
func Instantiate(s *sat.Solver, inst *Instance) error {
	for i := 0; i < inst.Variables; i++ {
		s.AddVariable()
	}
	lits := make([]sat.Literal, 0, 32)
	for _, clause := range inst.Clauses {
		lits = lits[:0]
		for _, l := range clause {
			lits = append(lits, sat.LiteralFromDimacs(l))
		}
		if err := s.AddClause(lits); err != nil {
			return err
		}
	}
	return nil
}
