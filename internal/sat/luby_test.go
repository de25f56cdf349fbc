package sat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLubySeries(t *testing.T) {
	want := []int{1, 1, 2, 1, 1, 2, 4, 1, 1, 2, 1, 1, 2, 4, 8}

	ls := LubySeries{}
	got := make([]int, len(want))
	for i := range got {
		got[i] = ls.Next()
	}

	assert.Equal(t, want, got)
	assert.Equal(t, 8, ls.MaxValue())
}

func TestLubySeries_Reset(t *testing.T) {
	ls := LubySeries{}
	for i := 0; i < 10; i++ {
		ls.Next()
	}
	ls.Reset()

	require.Equal(t, 1, ls.Next())
	require.Equal(t, 1, ls.Next())
	require.Equal(t, 2, ls.Next())
	require.Equal(t, 2, ls.MaxValue())
}
