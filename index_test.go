package textcrdt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildChain inserts n present nodes as a straight right-child chain off
// root (ids "a", "b", ... -- successive runes from 'a' -- in ascending
// lexical order so spliceIntoParent never reorders them), exercising only
// the balanced index's rebalancing, not the interleaving tree's branching.
func buildChain(t *testing.T, n int) *BalancedIndex {
	t.Helper()
	dir := newDirectory()
	root := dir.root()
	idx := newBalancedIndex(root)
	leftSALM, rightSALM := newLeftSALM(), newRightSALM()
	leftSALM.Create(root)
	rightSALM.Create(root)

	parent := root
	for i := 0; i < n; i++ {
		ch := rune('a' + i)
		node := dir.create(string(ch), ch, parent.ID, false)
		k := spliceIntoParent(parent, node)
		siblingsLen := len(parent.RightChildren)
		idx.insertNode(parent, node, k, leftSALM, rightSALM)
		updateSALMsOnInsert(parent, node, k, siblingsLen, leftSALM, rightSALM)
		parent = node
	}
	return idx
}

func TestBalancedIndexLengthAndRoundTrip(t *testing.T) {
	idx := buildChain(t, 20)
	require.Equal(t, 20, idx.Length())

	for i := 0; i < 20; i++ {
		n, err := idx.IndexToNode(i)
		require.NoError(t, err)
		gotIndex, present := idx.NodeToIndex(n)
		require.True(t, present)
		require.Equal(t, i, gotIndex)
	}
}

func TestBalancedIndexOutOfBounds(t *testing.T) {
	idx := buildChain(t, 5)
	_, err := idx.IndexToNode(5)
	require.ErrorIs(t, err, ErrIndexOutOfBounds)
	_, err = idx.IndexToNode(-1)
	require.ErrorIs(t, err, ErrIndexOutOfBounds)
}

func TestBalancedIndexStaysBalanced(t *testing.T) {
	idx := buildChain(t, 200)
	height, err := checkIndexShape(idx.root)
	require.NoError(t, err)
	// A perfectly balanced tree of 200 nodes has height ~log2(200) =~ 7.6;
	// AVL guarantees height <= 1.44*log2(n+2), comfortably under 14 here.
	require.Less(t, height, 14)
}

func TestBalancedIndexDeleteDoesNotShiftSurvivors(t *testing.T) {
	idx := buildChain(t, 10)
	mid, err := idx.IndexToNode(5)
	require.NoError(t, err)
	idx.deleteNode(mid)
	require.Equal(t, 9, idx.Length())

	before, err := idx.IndexToNode(4)
	require.NoError(t, err)
	require.Equal(t, byte('a'+4), byte(before.Value))

	after, err := idx.IndexToNode(5)
	require.NoError(t, err)
	require.Equal(t, byte('a'+6), byte(after.Value))

	// Deleting again is a no-op.
	idx.deleteNode(mid)
	require.Equal(t, 9, idx.Length())
}

func TestNextNode(t *testing.T) {
	idx := buildChain(t, 5)
	n, err := idx.IndexToNode(0)
	require.NoError(t, err)
	for i := 1; i < 5; i++ {
		n = idx.NextNode(n)
		require.NotNil(t, n)
		want, err := idx.IndexToNode(i)
		require.NoError(t, err)
		require.Same(t, want, n)
	}
	require.Nil(t, idx.NextNode(n))
}
