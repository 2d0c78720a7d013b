package mpt

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/hexary-dev/hexary/pkg/storage"
)

// Config is a set of options for NewTrie.
type Config struct {
	// Store is the node body backend. Required.
	Store storage.Store
	// Prune enables garbage collection of superseded node bodies after
	// every successful mutation. Pruning is only safe against a store
	// populated by this trie alone: a body shared with an earlier epoch
	// of the store may get deleted from under the other user. When in
	// doubt, batch mutations with SquashChanges instead.
	Prune bool
	// Logger is used for debug output, defaults to a no-op logger.
	Logger *zap.Logger
}

// Trie is an MPT trie storing all key-value pairs. It holds nothing but the
// root hash and the store handle, node bodies are round-tripped through the
// store on every operation. A single Trie must not be mutated concurrently.
type Trie struct {
	store storage.Store
	root  common.Hash
	prune bool
	log   *zap.Logger

	// refCount tracks bodies written by this trie while pruning, so that
	// a body re-added within the same operation survives its own prune
	// mark.
	refCount     map[common.Hash]int
	pendingPrune map[common.Hash]int
}

// NewTrie returns a new MPT trie rooted at the given hash. A zero root
// hash is treated as the empty trie root.
func NewTrie(root common.Hash, cfg Config) *Trie {
	if root == (common.Hash{}) {
		root = EmptyRootHash
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	t := &Trie{
		store: cfg.Store,
		root:  root,
		prune: cfg.Prune,
		log:   cfg.Logger,
	}
	if cfg.Prune {
		t.refCount = make(map[common.Hash]int)
	}
	return t
}

// Root returns the current root hash of t. It equals EmptyRootHash for a
// trie with no entries.
func (t *Trie) Root() common.Hash {
	return t.root
}

// Get returns the value for the provided key in t. A nil value and a nil
// error mean the key is absent.
func (t *Trie) Get(key []byte) ([]byte, error) {
	path := toNibbles(key)
	root, err := t.rootNode()
	if err != nil {
		return nil, t.wrapMissing(err, key)
	}
	node, remaining, err := t.traverseRaw(root, path)
	if err != nil {
		return nil, t.wrapMissing(err, key)
	}
	switch n := node.(type) {
	case EmptyNode:
		return nil, nil
	case *LeafNode:
		if bytes.Equal(remaining, n.key) {
			return copySlice(n.value), nil
		}
		return nil, nil
	case *ExtensionNode:
		// The key ended at or inside the extension's segment, no value
		// lives there.
		return nil, nil
	case *BranchNode:
		return copySlice(n.value), nil
	default:
		panic("invalid MPT node type")
	}
}

// Has returns true when the key is present in t.
func (t *Trie) Has(key []byte) (bool, error) {
	v, err := t.Get(key)
	return v != nil, err
}

// Put puts key-value pair in t. An empty value deletes the key.
func (t *Trie) Put(key, value []byte) error {
	if len(value) == 0 {
		return t.Delete(key)
	}
	t.beginPrune()
	root, err := t.rootNode()
	if err != nil {
		t.abortPrune()
		return t.wrapMissing(err, key)
	}
	newRoot, err := t.putIntoNode(root, toNibbles(key), copySlice(value))
	if err != nil {
		t.abortPrune()
		return t.wrapMissing(err, key)
	}
	if err := t.commitRoot(newRoot); err != nil {
		t.abortPrune()
		return err
	}
	t.completePrune()
	return nil
}

// putIntoNode puts value at the given path inside curr and returns the
// updated node. curr is pruned: a successful operation supersedes its
// stored body.
func (t *Trie) putIntoNode(curr Node, path []byte, value []byte) (Node, error) {
	t.pruneNode(curr)
	switch n := curr.(type) {
	case *LeafNode:
		return t.putIntoLeaf(n, path, value)
	case *BranchNode:
		return t.putIntoBranch(n, path, value)
	case *ExtensionNode:
		return t.putIntoExtension(n, path, value)
	case *HashNode:
		r, err := t.resolve(n)
		if err != nil {
			return nil, err
		}
		return t.putIntoNode(r, path, value)
	case EmptyNode:
		return NewLeafNode(path, value), nil
	default:
		panic("invalid MPT node type")
	}
}

// putIntoLeaf puts value to the trie if the current node is a Leaf,
// splitting it at the divergence point when the paths differ.
func (t *Trie) putIntoLeaf(curr *LeafNode, path, value []byte) (Node, error) {
	pref := lcp(curr.key, path)
	keyTail := curr.key[len(pref):]
	pathTail := path[len(pref):]
	if len(keyTail) == 0 && len(pathTail) == 0 {
		return NewLeafNode(curr.key, value), nil
	}

	b := NewBranchNode()
	if len(keyTail) == 0 {
		b.value = curr.value
	} else {
		i, rest := splitPath(keyTail)
		old, err := t.persistNode(NewLeafNode(rest, curr.value))
		if err != nil {
			return nil, err
		}
		b.Children[i] = old
	}
	if len(pathTail) == 0 {
		b.value = value
	} else {
		i, rest := splitPath(pathTail)
		leaf, err := t.persistNode(NewLeafNode(rest, value))
		if err != nil {
			return nil, err
		}
		b.Children[i] = leaf
	}
	return t.wrapIntoExtension(pref, b)
}

// putIntoExtension puts value to the trie if the current node is an
// Extension.
func (t *Trie) putIntoExtension(curr *ExtensionNode, path, value []byte) (Node, error) {
	if hasPrefix(path, curr.key) {
		r, err := t.putIntoNode(curr.next, path[len(curr.key):], value)
		if err != nil {
			return nil, err
		}
		next, err := t.persistNode(r)
		if err != nil {
			return nil, err
		}
		return NewExtensionNode(curr.key, next), nil
	}

	pref := lcp(curr.key, path)
	keyTail := curr.key[len(pref):]
	pathTail := path[len(pref):]

	b := NewBranchNode()
	if len(keyTail) == 1 {
		// The branch consumes the only remaining nibble, the existing
		// child reference is reused as is.
		b.Children[keyTail[0]] = curr.next
	} else {
		ext, err := t.persistNode(NewExtensionNode(keyTail[1:], curr.next))
		if err != nil {
			return nil, err
		}
		b.Children[keyTail[0]] = ext
	}
	if len(pathTail) == 0 {
		b.value = value
	} else {
		i, rest := splitPath(pathTail)
		leaf, err := t.persistNode(NewLeafNode(rest, value))
		if err != nil {
			return nil, err
		}
		b.Children[i] = leaf
	}
	return t.wrapIntoExtension(pref, b)
}

// putIntoBranch puts value to the trie if the current node is a Branch.
func (t *Trie) putIntoBranch(curr *BranchNode, path, value []byte) (Node, error) {
	if len(path) == 0 {
		curr.value = value
		curr.invalidateCache()
		return curr, nil
	}
	i, rest := splitPath(path)
	r, err := t.putIntoNode(curr.Children[i], rest, value)
	if err != nil {
		return nil, err
	}
	ref, err := t.persistNode(r)
	if err != nil {
		return nil, err
	}
	curr.Children[i] = ref
	curr.invalidateCache()
	return curr, nil
}

// wrapIntoExtension prepends an extension with the given prefix to a fresh
// branch node, persisting the branch if the prefix is non-empty.
func (t *Trie) wrapIntoExtension(prefix []byte, b *BranchNode) (Node, error) {
	if len(prefix) == 0 {
		return b, nil
	}
	ref, err := t.persistNode(b)
	if err != nil {
		return nil, err
	}
	return NewExtensionNode(copySlice(prefix), ref), nil
}

// Delete removes key from the trie. It returns no error on a missing key
// and doesn't touch the store or the root hash in that case.
func (t *Trie) Delete(key []byte) error {
	v, err := t.Get(key)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	t.beginPrune()
	root, err := t.rootNode()
	if err != nil {
		t.abortPrune()
		return t.wrapMissing(err, key)
	}
	newRoot, err := t.deleteFromNode(root, toNibbles(key))
	if err != nil {
		t.abortPrune()
		return t.wrapMissing(err, key)
	}
	if err := t.commitRoot(newRoot); err != nil {
		t.abortPrune()
		return err
	}
	t.completePrune()
	return nil
}

func (t *Trie) deleteFromNode(curr Node, path []byte) (Node, error) {
	t.pruneNode(curr)
	switch n := curr.(type) {
	case *LeafNode:
		if bytes.Equal(path, n.key) {
			return EmptyNode{}, nil
		}
		return n, nil
	case *BranchNode:
		return t.deleteFromBranch(n, path)
	case *ExtensionNode:
		return t.deleteFromExtension(n, path)
	case *HashNode:
		r, err := t.resolve(n)
		if err != nil {
			return nil, err
		}
		return t.deleteFromNode(r, path)
	case EmptyNode:
		return n, nil
	default:
		panic("invalid MPT node type")
	}
}

func (t *Trie) deleteFromBranch(b *BranchNode, path []byte) (Node, error) {
	if len(path) == 0 {
		b.value = nil
		b.invalidateCache()
	} else {
		i, rest := splitPath(path)
		r, err := t.deleteFromNode(b.Children[i], rest)
		if err != nil {
			return nil, err
		}
		ref, err := t.persistNode(r)
		if err != nil {
			return nil, err
		}
		b.Children[i] = ref
		b.invalidateCache()
	}

	count, index := b.lastNonEmpty()
	if count > 1 || (count == 1 && len(b.value) != 0) {
		return b, nil
	}
	if count == 0 {
		if len(b.value) == 0 {
			return EmptyNode{}, nil
		}
		// Only the value slot survived, the branch collapses to a leaf
		// terminating right here.
		return NewLeafNode([]byte{}, b.value), nil
	}

	// A single child and no value: the branch collapses into the child
	// with the slot nibble prepended.
	c := b.Children[index]
	resolved, err := t.resolve(c)
	if err != nil {
		return nil, err
	}
	switch child := resolved.(type) {
	case *LeafNode:
		t.pruneNode(child)
		return NewLeafNode(append([]byte{byte(index)}, child.key...), child.value), nil
	case *ExtensionNode:
		t.pruneNode(child)
		return NewExtensionNode(append([]byte{byte(index)}, child.key...), child.next), nil
	case *BranchNode:
		// The child's body stays valid, keep the existing reference.
		return NewExtensionNode([]byte{byte(index)}, c), nil
	default:
		panic("invalid MPT node type")
	}
}

func (t *Trie) deleteFromExtension(n *ExtensionNode, path []byte) (Node, error) {
	if !hasPrefix(path, n.key) {
		return n, nil
	}
	r, err := t.deleteFromNode(n.next, path[len(n.key):])
	if err != nil {
		return nil, err
	}
	switch nxt := r.(type) {
	case EmptyNode:
		return EmptyNode{}, nil
	case *LeafNode:
		return NewLeafNode(concatPaths(n.key, nxt.key), nxt.value), nil
	case *ExtensionNode:
		return NewExtensionNode(concatPaths(n.key, nxt.key), nxt.next), nil
	case *BranchNode:
		ref, err := t.persistNode(nxt)
		if err != nil {
			return nil, err
		}
		return NewExtensionNode(n.key, ref), nil
	default:
		panic("invalid MPT node type")
	}
}

// rootNode resolves the root body, an empty root hash resolves without
// touching the store.
func (t *Trie) rootNode() (Node, error) {
	if t.root == EmptyRootHash {
		return EmptyNode{}, nil
	}
	n, err := t.getFromStore(t.root)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, &MissingTraversalNodeError{NodeHash: t.root, Prefix: []byte{}}
		}
		return nil, err
	}
	return n, nil
}

// resolve replaces a hash node with its stored body, any other node is
// returned as is.
func (t *Trie) resolve(ref Node) (Node, error) {
	h, ok := ref.(*HashNode)
	if !ok {
		return ref, nil
	}
	n, err := t.getFromStore(h.hash)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, &MissingTraversalNodeError{NodeHash: h.hash}
		}
		return nil, err
	}
	return n, nil
}

func (t *Trie) getFromStore(h common.Hash) (Node, error) {
	data, err := t.store.Get(h.Bytes())
	if err != nil {
		return nil, err
	}
	n, err := decodeNode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode node %s: %w", h.TerminalString(), err)
	}
	if cn, ok := n.(cachedNode); ok {
		cn.setCache(data, h)
	}
	return n, nil
}

func (t *Trie) putToStore(h common.Hash, body []byte) error {
	if err := t.store.Put(h.Bytes(), body); err != nil {
		return fmt.Errorf("failed to store node %s: %w", h.TerminalString(), err)
	}
	if t.prune {
		t.refCount[h]++
	}
	return nil
}

// persistNode stores the node body if it's big enough to have a storage
// key and returns the reference to embed in the parent: the hash node for
// stored bodies, the node itself when it stays inlined.
func (t *Trie) persistNode(n Node) (Node, error) {
	switch n.(type) {
	case EmptyNode, *HashNode:
		return n, nil
	}
	bs := n.Bytes()
	if len(bs) < common.HashLength {
		return n, nil
	}
	h := n.Hash()
	if err := t.putToStore(h, bs); err != nil {
		return nil, err
	}
	return NewHashNode(h), nil
}

// commitRoot persists the new root body (a root is always stored by hash,
// however small) and updates the root hash.
func (t *Trie) commitRoot(newRoot Node) error {
	if t.prune && t.root != EmptyRootHash {
		// A small root body is stored by hash anyway, which the generic
		// prune marking skips, so it is caught here.
		if old, err := t.getFromStore(t.root); err == nil {
			if len(old.Bytes()) < common.HashLength {
				t.pendingPrune[t.root]++
			}
		}
	}
	switch n := newRoot.(type) {
	case EmptyNode:
		t.root = EmptyRootHash
	case *HashNode:
		t.root = n.hash
	default:
		if err := t.putToStore(n.Hash(), n.Bytes()); err != nil {
			return err
		}
		t.root = n.Hash()
	}
	return nil
}

func (t *Trie) beginPrune() {
	if t.prune {
		t.pendingPrune = make(map[common.Hash]int)
	}
}

func (t *Trie) abortPrune() {
	t.pendingPrune = nil
}

// pruneNode marks the stored body of n as superseded. Inlined bodies have
// no storage key and are never marked.
func (t *Trie) pruneNode(n Node) {
	if !t.prune || t.pendingPrune == nil {
		return
	}
	switch n.(type) {
	case EmptyNode, *HashNode:
		return
	}
	if bs := n.Bytes(); len(bs) >= common.HashLength {
		t.pendingPrune[n.Hash()]++
	}
}

// completePrune deletes the bodies marked during the current operation,
// skipping any that were written back within the same operation. It runs
// strictly after the new root is committed.
func (t *Trie) completePrune() {
	if !t.prune {
		return
	}
	var removed int
	for h, prunes := range t.pendingPrune {
		cnt := t.refCount[h] - prunes
		if cnt <= 0 {
			// Deletion is best-effort, a body missing from the store
			// was either never written or was pruned already.
			_ = t.store.Delete(h.Bytes())
			removed++
			cnt = 0
		}
		if cnt == 0 {
			delete(t.refCount, h)
		} else {
			t.refCount[h] = cnt
		}
	}
	if removed > 0 {
		t.log.Debug("pruned stale trie nodes",
			zap.Int("count", removed),
			zap.String("root", t.root.TerminalString()))
	}
	t.pendingPrune = nil
}

// wrapMissing converts a store-miss fault into a MissingTrieNodeError
// carrying the full key being operated on.
func (t *Trie) wrapMissing(err error, key []byte) error {
	var mt *MissingTraversalNodeError
	if errors.As(err, &mt) {
		return &MissingTrieNodeError{
			NodeHash: mt.NodeHash,
			Root:     t.root,
			Key:      copySlice(key),
			Prefix:   mt.Prefix,
		}
	}
	return err
}
