package mpt

import (
	"github.com/ethereum/go-ethereum/common"
)

// BaseNode implements basic things every node needs like caching hash and
// serialized representation. It's a basic node building block intended to be
// included into all node types.
type BaseNode struct {
	hash       common.Hash
	bytes      []byte
	hashValid  bool
	bytesValid bool
}

type cachedNode interface {
	setCache([]byte, common.Hash)
}

func (b *BaseNode) setCache(bs []byte, h common.Hash) {
	b.bytes = bs
	b.hash = h
	b.bytesValid = true
	b.hashValid = true
}

// getHash returns a hash of this BaseNode.
func (b *BaseNode) getHash(n Node) common.Hash {
	if !b.hashValid {
		b.hash = keccak256(b.getBytes(n))
		b.hashValid = true
	}
	return b.hash
}

// getBytes returns a slice of bytes representing this node.
func (b *BaseNode) getBytes(n Node) []byte {
	if !b.bytesValid {
		b.bytes = encodeNode(n)
		b.bytesValid = true
	}
	return b.bytes
}

// invalidateCache sets all cache fields to invalid state.
func (b *BaseNode) invalidateCache() {
	b.bytesValid = false
	b.hashValid = false
}
