package mpt

import (
	"github.com/ethereum/go-ethereum/common"
)

// childrenCount is the number of child slots of a branch node.
const childrenCount = 16

// BranchNode represents an MPT's branch node, 16 child slots indexed by the
// next key nibble plus an optional terminal value.
type BranchNode struct {
	BaseNode
	Children [childrenCount]Node
	value    []byte
}

var _ Node = (*BranchNode)(nil)

// NewBranchNode returns a new branch node with all child slots empty.
func NewBranchNode() *BranchNode {
	b := new(BranchNode)
	for i := range b.Children {
		b.Children[i] = EmptyNode{}
	}
	return b
}

// Type implements Node interface.
func (b *BranchNode) Type() NodeType {
	return BranchT
}

// Hash implements Node interface.
func (b *BranchNode) Hash() common.Hash {
	return b.getHash(b)
}

// Bytes implements Node interface.
func (b *BranchNode) Bytes() []byte {
	return b.getBytes(b)
}

// lastNonEmpty returns the number of non-empty child slots together with
// the index of the last one.
func (b *BranchNode) lastNonEmpty() (int, int) {
	var count, index int
	for i := range b.Children {
		if !isEmpty(b.Children[i]) {
			index = i
			count++
		}
	}
	return count, index
}
