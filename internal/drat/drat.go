// Package drat emits unsatisfiability proofs in the DRAT format: an
// append-only sequence of clause additions and deletions, each terminated
// by 0. The empty addition record is the empty clause closing the proof.
package drat

import (
	"bufio"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// Writer writes DRAT records to an underlying stream. Write errors are
// sticky: the first one is retained and reported by Flush, and subsequent
// records are dropped. This lets the solver treat the proof stream as an
// infallible append-only sink.
type Writer struct {
	bw  *bufio.Writer
	err error

	// Number of addition and deletion records passed to Add and Delete,
	// including records dropped after a write error.
	NumAdded   int64
	NumDeleted int64
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriter(w)}
}

// Add records the addition of a clause given as DIMACS literals. An empty
// slice records the empty clause.
func (w *Writer) Add(lits []int) {
	w.record("", lits)
	w.NumAdded++
}

// Delete records the deletion of a clause given as DIMACS literals.
func (w *Writer) Delete(lits []int) {
	w.record("d", lits)
	w.NumDeleted++
}

func (w *Writer) record(prefix string, lits []int) {
	if w.err != nil {
		return
	}
	buf := make([]byte, 0, 16)
	if prefix != "" {
		w.bw.WriteString(prefix)
		w.bw.WriteByte(' ')
	}
	for _, l := range lits {
		buf = strconv.AppendInt(buf[:0], int64(l), 10)
		if _, err := w.bw.Write(buf); err != nil {
			w.err = err
			return
		}
		w.bw.WriteByte(' ')
	}
	w.bw.WriteByte('0')
	if err := w.bw.WriteByte('\n'); err != nil {
		w.err = err
	}
}

// Flush writes any buffered records and returns the first error encountered
// since the writer was created.
func (w *Writer) Flush() error {
	if w.err != nil {
		return errors.Wrap(w.err, "proof stream")
	}
	if err := w.bw.Flush(); err != nil {
		return errors.Wrap(err, "proof stream")
	}
	return nil
}
