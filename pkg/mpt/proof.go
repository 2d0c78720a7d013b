package mpt

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hexary-dev/hexary/pkg/storage"
)

// GetProof returns a proof that key belongs to t, or a proof of its
// absence. The proof consists of the serialized node bodies occurring on
// the path from the root to the key's leaf (or to the divergence point
// showing the key absent). Inlined children travel inside their parent's
// body and get no element of their own.
func (t *Trie) GetProof(key []byte) ([][]byte, error) {
	root, err := t.rootNode()
	if err != nil {
		return nil, t.wrapMissing(err, key)
	}
	var proof [][]byte
	if err := t.proofNodes(root, toNibbles(key), &proof, true); err != nil {
		return nil, t.wrapMissing(err, key)
	}
	return proof, nil
}

func (t *Trie) proofNodes(curr Node, path []byte, proof *[][]byte, standalone bool) error {
	switch n := curr.(type) {
	case EmptyNode:
		return nil
	case *HashNode:
		r, err := t.resolve(n)
		if err != nil {
			return err
		}
		return t.proofNodes(r, path, proof, true)
	case *LeafNode:
		if standalone {
			*proof = append(*proof, copySlice(n.Bytes()))
		}
		return nil
	case *ExtensionNode:
		if standalone {
			*proof = append(*proof, copySlice(n.Bytes()))
		}
		if hasPrefix(path, n.key) {
			return t.proofNodes(n.next, path[len(n.key):], proof, false)
		}
		return nil
	case *BranchNode:
		if standalone {
			*proof = append(*proof, copySlice(n.Bytes()))
		}
		if len(path) == 0 {
			return nil
		}
		i, rest := splitPath(path)
		return t.proofNodes(n.Children[i], rest, proof, false)
	default:
		panic("invalid MPT node type")
	}
}

// VerifyProof verifies that key with its proof belongs to a trie with the
// specified root hash. It returns the value for an inclusion proof, a nil
// value for a valid exclusion proof and an error wrapping ErrInvalidProof
// when any referenced digest doesn't match the supplied bodies.
func VerifyProof(root common.Hash, key []byte, proof [][]byte) ([]byte, error) {
	store := storage.NewMemoryStore()
	tr := NewTrie(root, Config{Store: store})
	for i := range proof {
		// Put in MemoryStore returns no errors.
		_ = store.Put(keccak256(proof[i]).Bytes(), copySlice(proof[i]))
	}
	v, err := tr.Get(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidProof, err)
	}
	return v, nil
}
