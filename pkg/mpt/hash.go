package mpt

import (
	"github.com/ethereum/go-ethereum/common"
)

// HashNode represents a by-reference child, a 32-byte storage key of a node
// body that has not been resolved from the store yet.
type HashNode struct {
	hash common.Hash
}

var _ Node = (*HashNode)(nil)

// NewHashNode returns a hash node with the specified hash.
func NewHashNode(h common.Hash) *HashNode {
	return &HashNode{hash: h}
}

// Type implements Node interface.
func (h *HashNode) Type() NodeType {
	return HashT
}

// Hash implements Node interface.
func (h *HashNode) Hash() common.Hash {
	return h.hash
}

// Bytes implements Node interface. A hash node carries no body.
func (h *HashNode) Bytes() []byte {
	panic("can't serialize hash node")
}
