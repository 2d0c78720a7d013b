package mpt

import (
	"github.com/ethereum/go-ethereum/common"
)

// EmptyNode represents the absence of a node. It serializes to an empty
// byte string and its hash is the well-known empty trie root.
type EmptyNode struct{}

// rlpEmptyString is the RLP encoding of an empty byte string.
var rlpEmptyString = []byte{0x80}

// Type implements Node interface.
func (e EmptyNode) Type() NodeType {
	return EmptyT
}

// Hash implements Node interface.
func (e EmptyNode) Hash() common.Hash {
	return EmptyRootHash
}

// Bytes implements Node interface.
func (e EmptyNode) Bytes() []byte {
	return rlpEmptyString
}
