package mpt

// Iterator is a lazy, restartable depth-first walk over the key-value
// pairs of a trie, yielding keys in nibble-lexicographic order. The trie
// must not be mutated while an iterator is in use.
type Iterator struct {
	t     *Trie
	stack []iterElem
	key   []byte
	value []byte
	err   error
}

type iterElem struct {
	node Node
	path []byte
	// next is the next branch slot to descend into, -1 before the value
	// slot is visited.
	next int
}

// NewIterator creates an iterator positioned before the first pair of t.
func NewIterator(t *Trie) *Iterator {
	it := &Iterator{t: t}
	root, err := t.rootNode()
	if err != nil {
		it.err = err
		return it
	}
	it.push(root, []byte{})
	return it
}

func (it *Iterator) push(n Node, path []byte) {
	if h, ok := n.(*HashNode); ok {
		r, err := it.t.resolve(h)
		if err != nil {
			it.err = err
			return
		}
		n = r
	}
	if isEmpty(n) {
		return
	}
	it.stack = append(it.stack, iterElem{node: n, path: path, next: -1})
}

// Next moves the iterator to the next pair. It returns false when the walk
// is finished or has failed, see Err.
func (it *Iterator) Next() bool {
	if it.err != nil {
		return false
	}
	for len(it.stack) > 0 {
		top := &it.stack[len(it.stack)-1]
		switch n := top.node.(type) {
		case *LeafNode:
			it.key = concatPaths(top.path, n.key)
			it.value = copySlice(n.value)
			it.stack = it.stack[:len(it.stack)-1]
			return true
		case *ExtensionNode:
			path := concatPaths(top.path, n.key)
			it.stack = it.stack[:len(it.stack)-1]
			it.push(n.next, path)
			if it.err != nil {
				return false
			}
		case *BranchNode:
			if top.next == -1 {
				top.next = 0
				if len(n.value) != 0 {
					it.key = copySlice(top.path)
					it.value = copySlice(n.value)
					return true
				}
			}
			if top.next >= childrenCount {
				it.stack = it.stack[:len(it.stack)-1]
				continue
			}
			i := top.next
			top.next++
			if !isEmpty(n.Children[i]) {
				it.push(n.Children[i], concatPaths(top.path, []byte{byte(i)}))
				if it.err != nil {
					return false
				}
			}
		default:
			panic("invalid MPT node type")
		}
	}
	return false
}

// Key returns the key of the current pair. Keys produced by Put always
// convert back to bytes cleanly.
func (it *Iterator) Key() []byte {
	key, err := fromNibbles(it.key)
	if err != nil {
		return nil
	}
	return key
}

// Path returns the nibble path of the current pair.
func (it *Iterator) Path() []byte {
	return it.key
}

// Value returns the value of the current pair.
func (it *Iterator) Value() []byte {
	return it.value
}

// Err returns the error that terminated the walk, if any.
func (it *Iterator) Err() error {
	return it.err
}
