package dimacs

import (
	"github.com/pkg/errors"
	"github.com/rhartert/dimacs"
)

// ReadModels returns the list of models (if any) contained in the given
// file. Model files contain one model per line as whitespace-separated
// signed literals, optionally terminated by 0.
func ReadModels(filename string) ([][]bool, error) {
	rc, err := reader(filename, false)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading file %q", filename)
	}
	defer rc.Close()

	b := &modelBuilder{}
	if err := dimacs.ReadBuilder(rc, b); err != nil {
		return nil, err
	}

	return b.models, nil
}

// modelBuilder implements dimacs.Builder for model files.
type modelBuilder struct {
	models [][]bool
}

func (b *modelBuilder) Problem(problem string, nVars int, nClauses int) error {
	return errors.New("model files should not have problem lines")
}

func (b *modelBuilder) Comment(_ string) error {
	return nil // ignore comments
}

func (b *modelBuilder) Clause(tmpClause []int) error {
	model := make([]bool, len(tmpClause))
	for i, l := range tmpClause {
		model[i] = l > 0
	}
	b.models = append(b.models, model)
	return nil
}
