package dimacs

import (
	"bufio"
	"fmt"
	"io"

	"github.com/slate-solver/slate/internal/sat"
)

// Number of literals per v-line in the certificate output.
const valuesPerLine = 12

// WriteCertificate emits the DIMACS result lines for the given solver
// status. For a satisfiable instance the model is listed on v-prefixed
// lines terminated by 0.
func WriteCertificate(w io.Writer, status sat.LBool, model []bool) error {
	bw := bufio.NewWriter(w)

	switch status {
	case sat.True:
		fmt.Fprintln(bw, "s SATISFIABLE")
		n := 0
		for v, val := range model {
			if n == 0 {
				fmt.Fprint(bw, "v")
			}
			lit := v + 1
			if !val {
				lit = -lit
			}
			fmt.Fprintf(bw, " %d", lit)
			if n++; n == valuesPerLine {
				fmt.Fprintln(bw)
				n = 0
			}
		}
		if n != 0 {
			fmt.Fprintln(bw, " 0")
		} else {
			fmt.Fprintln(bw, "v 0")
		}
	case sat.False:
		fmt.Fprintln(bw, "s UNSATISFIABLE")
	default:
		fmt.Fprintln(bw, "s UNKNOWN")
	}

	return bw.Flush()
}

// Validate returns the index of the first clause of the instance that the
// model does not satisfy, or -1 if the model satisfies every clause.
func Validate(inst *Instance, model []bool) int {
	for i, clause := range inst.Clauses {
		ok := false
		for _, l := range clause {
			v := l
			if v < 0 {
				v = -v
			}
			if v-1 >= len(model) {
				continue
			}
			if (l > 0) == model[v-1] {
				ok = true
				break
			}
		}
		if !ok {
			return i
		}
	}
	return -1
}
