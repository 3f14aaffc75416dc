package transform

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/quarry/internal/drill"
)

func sequentialNodes(n int) []drill.Node {
	nodes := make([]drill.Node, n)
	for i := range nodes {
		nodes[i] = drill.Node{ID: fmt.Sprintf("n-%d", i), Name: fmt.Sprintf("n-%d", i), Value: float64(i)}
	}
	return nodes
}

// TestVirtualize_StrideSampling pins the reference case: 95 elements at
// maxDataPoints=10 yields exactly the elements at indices 0,10,...,90.
func TestVirtualize_StrideSampling(t *testing.T) {
	out := Virtualize(sequentialNodes(95), PerfConfig{VirtualizeDataPoints: true, MaxDataPoints: 10})

	require.Len(t, out, 10)
	for i, n := range out {
		assert.Equal(t, float64(i*10), n.Value, "element %d", i)
	}
}

// TestVirtualize_InactiveWhenDisabled verifies the input passes through
// untouched when virtualization is off.
func TestVirtualize_InactiveWhenDisabled(t *testing.T) {
	in := sequentialNodes(95)
	out := Virtualize(in, PerfConfig{VirtualizeDataPoints: false, MaxDataPoints: 10})
	assert.Equal(t, in, out)
}

// TestVirtualize_InactiveWhenWithinBudget verifies small inputs pass through.
func TestVirtualize_InactiveWhenWithinBudget(t *testing.T) {
	in := sequentialNodes(10)
	out := Virtualize(in, PerfConfig{VirtualizeDataPoints: true, MaxDataPoints: 10})
	assert.Equal(t, in, out)
}

// TestVirtualize_NeverExceedsBudget checks the output size bound across a
// spread of input sizes.
func TestVirtualize_NeverExceedsBudget(t *testing.T) {
	for _, size := range []int{11, 19, 20, 21, 99, 100, 101, 1000} {
		out := Virtualize(sequentialNodes(size), PerfConfig{VirtualizeDataPoints: true, MaxDataPoints: 10})
		assert.LessOrEqual(t, len(out), 10, "input size %d", size)
		assert.Equal(t, 0.0, out[0].Value, "first element always retained (size %d)", size)
	}
}
