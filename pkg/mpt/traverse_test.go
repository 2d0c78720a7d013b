package mpt

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestTraverse_EmptyTrie(t *testing.T) {
	tr := NewTrie(common.Hash{}, Config{Store: newTestStore()})
	node, err := tr.Traverse(nil)
	require.NoError(t, err)
	require.Equal(t, EmptyT, node.Raw.Type())
	require.Empty(t, node.SubSegments)
	require.Empty(t, node.Value)
	require.Empty(t, node.Suffix)
}

func TestTraverse_Annotations(t *testing.T) {
	tr := newTestTrie(t, map[string]string{
		"do":   "verb",
		"dog":  "puppy",
		"doge": "coin",
	})

	// "do" = 0x64 0x6f, the shared segment of all three keys.
	doPath := []byte{0x6, 0x4, 0x6, 0xf}

	root, err := tr.Traverse(nil)
	require.NoError(t, err)
	require.Equal(t, ExtensionT, root.Raw.Type())
	require.Equal(t, [][]byte{doPath}, root.SubSegments)

	branch, err := tr.Traverse(doPath)
	require.NoError(t, err)
	require.Equal(t, BranchT, branch.Raw.Type())
	// The branch terminates "do" itself and branches to "g" (0x67).
	require.Equal(t, []byte("verb"), branch.Value)
	require.Equal(t, [][]byte{{0x6}}, branch.SubSegments)

	inner, err := tr.Traverse(append(doPath, 0x6))
	require.NoError(t, err)
	require.Equal(t, ExtensionT, inner.Raw.Type())
	require.Equal(t, [][]byte{{0x7}}, inner.SubSegments)
	require.Empty(t, inner.Value)

	gBranch, err := tr.Traverse(append(doPath, 0x6, 0x7))
	require.NoError(t, err)
	require.Equal(t, []byte("puppy"), gBranch.Value)
	require.Equal(t, [][]byte{{0x6}}, gBranch.SubSegments)
}

func TestTraverse_PartialPath(t *testing.T) {
	tr := newTestTrie(t, map[string]string{
		"my-key":       "some-value",
		"my-other-key": "another-value",
	})
	sharedSegment := []byte{0x6, 0xd, 0x7, 0x9, 0x2, 0xd, 0x6}

	t.Run("inside extension", func(t *testing.T) {
		_, err := tr.Traverse(sharedSegment[:3])
		var partial *TraversedPartialPathError
		require.ErrorAs(t, err, &partial)
		require.Equal(t, []byte{}, partial.PathToNode)
		require.Equal(t, sharedSegment[:3], partial.UntraversedTail)
		require.Equal(t, ExtensionT, partial.Node.Raw.Type())
		require.Equal(t, [][]byte{sharedSegment}, partial.Node.SubSegments)
		// The simulated node is the unconsumed tail of the segment.
		require.Equal(t, ExtensionT, partial.SimulatedNode.Raw.Type())
		require.Equal(t, [][]byte{sharedSegment[3:]}, partial.SimulatedNode.SubSegments)

		// The tail is explorable: traversing the simulated node down the
		// tail segment arrives at the real branch.
		branch, err := tr.TraverseFrom(partial.SimulatedNode, sharedSegment[3:])
		require.NoError(t, err)
		require.Equal(t, [][]byte{{0xb}, {0xf}}, branch.SubSegments)
	})

	t.Run("inside leaf", func(t *testing.T) {
		_, err := tr.Traverse(append(sharedSegment, 0xb, 0x6))
		var partial *TraversedPartialPathError
		require.ErrorAs(t, err, &partial)
		require.Equal(t, append(sharedSegment, 0xb), partial.PathToNode)
		require.Equal(t, []byte{0x6}, partial.UntraversedTail)
		require.Equal(t, LeafT, partial.SimulatedNode.Raw.Type())
		require.Equal(t, []byte{0x5, 0x7, 0x9}, partial.SimulatedNode.Suffix)
		require.Equal(t, []byte("some-value"), partial.SimulatedNode.Value)
	})

	t.Run("leaf boundary", func(t *testing.T) {
		_, err := tr.Traverse(append(sharedSegment, 0xb, 0x6, 0x5, 0x7, 0x9))
		var partial *TraversedPartialPathError
		require.ErrorAs(t, err, &partial)
		require.Empty(t, partial.SimulatedNode.Suffix)
		require.Equal(t, []byte("some-value"), partial.SimulatedNode.Value)
	})

	t.Run("past the leaf", func(t *testing.T) {
		node, err := tr.Traverse(append(sharedSegment, 0xb, 0x6, 0x5, 0x7, 0x9, 0x9))
		require.NoError(t, err)
		require.Equal(t, EmptyT, node.Raw.Type())
	})

	t.Run("divergent", func(t *testing.T) {
		node, err := tr.Traverse([]byte{0x6, 0xd, 0x7, 0x8})
		require.NoError(t, err)
		require.Equal(t, EmptyT, node.Raw.Type())
	})
}

func TestTraverse_MissingNode(t *testing.T) {
	store := newTestStore()
	tr := NewTrie(common.Hash{}, Config{Store: store})
	require.NoError(t, tr.Put([]byte("my-key"), []byte("some-value")))
	require.NoError(t, tr.Put([]byte("my-other-key"), []byte("another-value")))

	sharedSegment := []byte{0x6, 0xd, 0x7, 0x9, 0x2, 0xd, 0x6}
	branch, err := tr.Traverse(sharedSegment)
	require.NoError(t, err)
	require.NoError(t, store.Delete(branch.Raw.Hash().Bytes()))

	_, err = tr.Traverse(append(sharedSegment, 0xb))
	var missing *MissingTraversalNodeError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, branch.Raw.Hash(), missing.NodeHash)
	require.Equal(t, sharedSegment, missing.Prefix)
}

func TestTraverseNodes(t *testing.T) {
	tr := newTestTrie(t, map[string]string{
		"my-key":       "some-value",
		"my-other-key": "another-value",
	})

	var (
		types  []NodeType
		leaves int
	)
	require.NoError(t, tr.TraverseNodes(func(path []byte, n Node, body []byte) bool {
		types = append(types, n.Type())
		if n.Type() == LeafT {
			leaves++
		}
		require.NotEmpty(t, body)
		return false
	}))
	require.Equal(t, []NodeType{ExtensionT, BranchT, LeafT, LeafT}, types)
	require.Equal(t, 2, leaves)

	// Early exit after the first node.
	var visited int
	require.NoError(t, tr.TraverseNodes(func(path []byte, n Node, body []byte) bool {
		visited++
		return true
	}))
	require.Equal(t, 1, visited)
}
