package sat

// LubySeries generates the sequence 1, 1, 2, 1, 1, 2, 4, 1, 1, 2, 1, 1, 2,
// 4, 8, ... used to stabilize the stage spans between clause reductions.
type LubySeries struct {
	index    int
	maxValue int
}

// Next returns the next value of the series.
func (ls *LubySeries) Next() int {
	v := lubyAt(ls.index)
	ls.index++
	if v > ls.maxValue {
		ls.maxValue = v
	}
	return v
}

// MaxValue returns the largest value generated so far.
func (ls *LubySeries) MaxValue() int {
	return ls.maxValue
}

// Reset restarts the series from its beginning.
func (ls *LubySeries) Reset() {
	ls.index = 0
	ls.maxValue = 0
}

// lubyAt returns the i-th element (0-based) of the Luby series by locating
// the finite subsequence that contains i and the power of two at its end.
func lubyAt(i int) int {
	size, seq := 1, 0
	for size < i+1 {
		seq++
		size = 2*size + 1
	}
	for size-1 != i {
		size = (size - 1) / 2
		seq--
		i %= size
	}
	return 1 << seq
}
