package mpt

import (
	"github.com/ethereum/go-ethereum/common"
)

// ExtensionNode represents an MPT's extension node, a shared key segment
// compressing a linear chain down to its single non-empty child.
type ExtensionNode struct {
	BaseNode
	key  []byte
	next Node
}

var _ Node = (*ExtensionNode)(nil)

// NewExtensionNode returns an extension node with the specified key and the
// next node. The key must be mangled, i.e. must contain only bytes with
// high half = 0.
func NewExtensionNode(key []byte, next Node) *ExtensionNode {
	return &ExtensionNode{
		key:  key,
		next: next,
	}
}

// Type implements Node interface.
func (e *ExtensionNode) Type() NodeType {
	return ExtensionT
}

// Hash implements Node interface.
func (e *ExtensionNode) Hash() common.Hash {
	return e.getHash(e)
}

// Bytes implements Node interface.
func (e *ExtensionNode) Bytes() []byte {
	return e.getBytes(e)
}
