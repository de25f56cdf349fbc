package sat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResetSet(t *testing.T) {
	rs := &ResetSet{}
	for i := 0; i < 4; i++ {
		rs.Expand()
	}

	rs.Clear()
	assert.False(t, rs.Contains(0))

	rs.Add(0)
	rs.Add(2)
	assert.True(t, rs.Contains(0))
	assert.False(t, rs.Contains(1))
	assert.True(t, rs.Contains(2))

	rs.Remove(2)
	assert.False(t, rs.Contains(2))

	rs.Clear()
	assert.False(t, rs.Contains(0))
	assert.False(t, rs.Contains(2))
}

func TestResetSet_TimestampOverflow(t *testing.T) {
	rs := &ResetSet{}
	rs.Expand()

	for i := 0; i < 1<<16; i++ {
		rs.Clear()
	}
	rs.Add(0)
	assert.True(t, rs.Contains(0))

	rs.Clear()
	assert.False(t, rs.Contains(0))
}
