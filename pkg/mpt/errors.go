package mpt

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInvalidProof is returned when proof verification fails.
	ErrInvalidProof = errors.New("invalid proof")
	// ErrPerfectVisibility is returned by fog lookups when there are no
	// unexplored prefixes left anywhere.
	ErrPerfectVisibility = errors.New("no unexplored prefixes remaining")
	// ErrFullDirectionalVisibility is returned by rightward fog lookups
	// when there are no unexplored prefixes at or after the target.
	ErrFullDirectionalVisibility = errors.New("no unexplored prefixes to the right")
)

// MissingTrieNodeError is returned when Get, Put or Delete can't resolve a
// referenced node body from the store. Prefix holds the nibbles traversed
// from the root up to the missing reference; it is nil when the fault
// happens while Put or Delete rebuilds the trie, which doesn't track its
// position. Delete looks the key up with Get first, so a miss on that walk
// carries the prefix.
type MissingTrieNodeError struct {
	NodeHash common.Hash
	Root     common.Hash
	Key      []byte
	Prefix   []byte
}

// Error implements the error interface.
func (e *MissingTrieNodeError) Error() string {
	if e.Prefix == nil {
		return fmt.Sprintf("trie node %s is missing from the store (root %s, key %x)",
			e.NodeHash.TerminalString(), e.Root.TerminalString(), e.Key)
	}
	return fmt.Sprintf("trie node %s is missing from the store (root %s, key %x, traversed prefix %x)",
		e.NodeHash.TerminalString(), e.Root.TerminalString(), e.Key, e.Prefix)
}

// MissingTraversalNodeError is the traversal flavour of
// MissingTrieNodeError: raised from Traverse and TraverseFrom, where no
// full user key is available.
type MissingTraversalNodeError struct {
	NodeHash common.Hash
	Prefix   []byte
}

// Error implements the error interface.
func (e *MissingTraversalNodeError) Error() string {
	return fmt.Sprintf("trie node %s is missing from the store (traversed prefix %x)",
		e.NodeHash.TerminalString(), e.Prefix)
}

// TraversedPartialPathError is a non-fatal signal raised when a traversal
// target ends strictly inside the key segment of a leaf or extension node,
// or exactly at the end of a leaf's segment. SimulatedNode is the
// unconsumed tail of that segment sliced out as a standalone node (a leaf
// with an empty path in the latter case), which a walker can keep
// exploring.
type TraversedPartialPathError struct {
	// PathToNode is the traversed prefix at which the split node starts.
	PathToNode []byte
	// Node is the annotated node whose segment the path ended inside of.
	Node *TrieNode
	// SimulatedNode is the tail part of the node past the traversal point.
	SimulatedNode *TrieNode
	// UntraversedTail is the part of the traversal target that dove into
	// the node's segment.
	UntraversedTail []byte
}

// Error implements the error interface.
func (e *TraversedPartialPathError) Error() string {
	return fmt.Sprintf("traversal ended inside a node segment (prefix %x, tail %x)",
		e.PathToNode, e.UntraversedTail)
}
