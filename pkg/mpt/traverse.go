package mpt

import (
	"errors"

	"github.com/hexary-dev/hexary/pkg/storage"
)

// TrieNode is an annotated node as reported by Traverse and TraverseFrom.
type TrieNode struct {
	// SubSegments lists the nibble edges leading out of this node: one
	// single-nibble segment per occupied branch slot (the value slot
	// excluded), the whole key segment for an extension, nothing for a
	// leaf or an absent node.
	SubSegments [][]byte
	// Value is the terminal value when this node terminates a key.
	Value []byte
	// Suffix is the remaining key path of a leaf.
	Suffix []byte
	// Raw is the decoded node body.
	Raw Node
}

func annotateNode(n Node) *TrieNode {
	res := &TrieNode{Raw: n}
	switch n := n.(type) {
	case *LeafNode:
		res.Value = copySlice(n.value)
		res.Suffix = copySlice(n.key)
	case *ExtensionNode:
		res.SubSegments = [][]byte{copySlice(n.key)}
	case *BranchNode:
		for i := range n.Children {
			if !isEmpty(n.Children[i]) {
				res.SubSegments = append(res.SubSegments, []byte{byte(i)})
			}
		}
		res.Value = copySlice(n.value)
	}
	return res
}

// Traverse walks down from the root consuming exactly the provided nibble
// path and returns the annotated node it arrives at. Traversing the empty
// path annotates the root itself. A path ending strictly inside the key
// segment of a leaf or extension, or exactly at the end of a leaf's
// segment, fails with TraversedPartialPathError carrying the simulated
// tail of that segment.
func (t *Trie) Traverse(path []byte) (*TrieNode, error) {
	root, err := t.rootNode()
	if err != nil {
		return nil, err
	}
	return t.traverseNode(root, path)
}

// TraverseFrom is Traverse starting at a previously fetched node instead
// of the root. The path from the root to the supplied node is not
// re-verified.
func (t *Trie) TraverseFrom(parent *TrieNode, path []byte) (*TrieNode, error) {
	return t.traverseNode(parent.Raw, path)
}

func (t *Trie) traverseNode(start Node, path []byte) (*TrieNode, error) {
	node, remaining, err := t.traverseRaw(start, path)
	if err != nil {
		return nil, err
	}
	if len(remaining) == 0 {
		return annotateNode(node), nil
	}

	prefix := copySlice(path[:len(path)-len(remaining)])
	switch n := node.(type) {
	case *LeafNode:
		if len(remaining) > len(n.key) {
			// Dove past the end of the leaf's segment, nothing there.
			return annotateNode(EmptyNode{}), nil
		}
		sim := NewLeafNode(copySlice(n.key[len(remaining):]), n.value)
		return nil, &TraversedPartialPathError{
			PathToNode:      prefix,
			Node:            annotateNode(n),
			SimulatedNode:   annotateNode(sim),
			UntraversedTail: copySlice(remaining),
		}
	case *ExtensionNode:
		sim := NewExtensionNode(copySlice(n.key[len(remaining):]), n.next)
		return nil, &TraversedPartialPathError{
			PathToNode:      prefix,
			Node:            annotateNode(n),
			SimulatedNode:   annotateNode(sim),
			UntraversedTail: copySlice(remaining),
		}
	default:
		panic("invalid traversal result")
	}
}

// traverseRaw walks down from node consuming key nibble by nibble. It
// returns the deepest node reached together with the unconsumed key
// suffix. The suffix is non-empty only when the walk ended at a leaf
// sharing a prefix with it or inside an extension's segment.
func (t *Trie) traverseRaw(node Node, key []byte) (Node, []byte, error) {
	remaining := key
	for len(remaining) > 0 {
		switch n := node.(type) {
		case EmptyNode:
			return EmptyNode{}, nil, nil
		case *LeafNode:
			if nibblesAgree(n.key, remaining) {
				return n, remaining, nil
			}
			return EmptyNode{}, nil, nil
		case *ExtensionNode:
			pref := lcp(n.key, remaining)
			switch {
			case len(pref) == len(n.key):
				node = n.next
				remaining = remaining[len(n.key):]
			case len(pref) == len(remaining):
				// The key ends inside the extension's segment.
				return n, remaining, nil
			default:
				return EmptyNode{}, nil, nil
			}
		case *BranchNode:
			node = n.Children[remaining[0]]
			remaining = remaining[1:]
		case *HashNode:
			r, err := t.resolveTraversal(n, key, remaining)
			if err != nil {
				return nil, nil, err
			}
			node = r
		default:
			panic("invalid MPT node type")
		}
	}
	if h, ok := node.(*HashNode); ok {
		r, err := t.resolveTraversal(h, key, nil)
		if err != nil {
			return nil, nil, err
		}
		node = r
	}
	return node, nil, nil
}

func (t *Trie) resolveTraversal(h *HashNode, key, remaining []byte) (Node, error) {
	n, err := t.getFromStore(h.hash)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, &MissingTraversalNodeError{
				NodeHash: h.hash,
				Prefix:   copySlice(key[:len(key)-len(remaining)]),
			}
		}
		return nil, err
	}
	return n, nil
}

var errStop = errors.New("stop condition is met")

// TraverseNodes visits trie nodes in pre-order starting from the root,
// calling process with the nibble path to each node, the node itself and
// its serialized body, until true is returned from process. Inlined nodes
// are visited like any other.
func (t *Trie) TraverseNodes(process func(pathToNode []byte, node Node, nodeBytes []byte) bool) error {
	root, err := t.rootNode()
	if err != nil {
		return err
	}
	err = t.traverseNodes(root, []byte{}, process)
	if errors.Is(err, errStop) {
		return nil
	}
	return err
}

func (t *Trie) traverseNodes(curr Node, path []byte, process func(pathToNode []byte, node Node, nodeBytes []byte) bool) error {
	switch n := curr.(type) {
	case EmptyNode:
		return nil
	case *HashNode:
		r, err := t.resolve(n)
		if err != nil {
			return err
		}
		return t.traverseNodes(r, path, process)
	}
	if process(copySlice(path), curr, copySlice(curr.Bytes())) {
		return errStop
	}
	switch n := curr.(type) {
	case *LeafNode:
		return nil
	case *ExtensionNode:
		return t.traverseNodes(n.next, concatPaths(path, n.key), process)
	case *BranchNode:
		for i := 0; i < childrenCount; i++ {
			if isEmpty(n.Children[i]) {
				continue
			}
			err := t.traverseNodes(n.Children[i], concatPaths(path, []byte{byte(i)}), process)
			if err != nil {
				return err
			}
		}
		return nil
	default:
		panic("invalid MPT node type")
	}
}
