package mpt

import (
	"github.com/ethereum/go-ethereum/common"
)

// LeafNode represents an MPT's leaf node: the terminal suffix of a key
// together with its value. The path may only be empty when the leaf hangs
// directly off a branch slot.
type LeafNode struct {
	BaseNode
	key   []byte
	value []byte
}

var _ Node = (*LeafNode)(nil)

// NewLeafNode returns a leaf node with the specified path and value. The
// path must be mangled, i.e. must contain only bytes with high half = 0.
func NewLeafNode(path, value []byte) *LeafNode {
	return &LeafNode{
		key:   path,
		value: value,
	}
}

// Type implements Node interface.
func (n *LeafNode) Type() NodeType {
	return LeafT
}

// Hash implements Node interface.
func (n *LeafNode) Hash() common.Hash {
	return n.getHash(n)
}

// Bytes implements Node interface.
func (n *LeafNode) Bytes() []byte {
	return n.getBytes(n)
}
