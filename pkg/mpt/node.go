package mpt

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/crypto/sha3"
)

// NodeType represents node type.
type NodeType byte

// Node types definitions.
const (
	BranchT    NodeType = 0x00
	ExtensionT NodeType = 0x01
	HashT      NodeType = 0x02
	LeafT      NodeType = 0x03
	EmptyT     NodeType = 0x04
)

// EmptyRootHash is the root hash of a trie with no entries, the keccak-256
// digest of an RLP-encoded empty byte string.
var EmptyRootHash = common.HexToHash("56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421")

// Node represents common interface of all MPT nodes.
type Node interface {
	// Type returns the node type.
	Type() NodeType
	// Hash returns the keccak-256 digest of the node's RLP body.
	Hash() common.Hash
	// Bytes returns the node's RLP body.
	Bytes() []byte
}

func keccak256(data []byte) common.Hash {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	var res common.Hash
	h.Sum(res[:0])
	return res
}

func isEmpty(n Node) bool {
	_, ok := n.(EmptyNode)
	return ok
}

// encodeNode returns the canonical RLP body of a node. Children shorter
// than 32 bytes are embedded verbatim, all others are referred to by their
// keccak digest.
func encodeNode(n Node) []byte {
	var (
		bs  []byte
		err error
	)
	switch n := n.(type) {
	case EmptyNode:
		return n.Bytes()
	case *LeafNode:
		bs, err = rlp.EncodeToBytes([]interface{}{CompactEncode(true, n.key), n.value})
	case *ExtensionNode:
		bs, err = rlp.EncodeToBytes([]interface{}{CompactEncode(false, n.key), childRef(n.next)})
	case *BranchNode:
		elems := make([]interface{}, childrenCount+1)
		for i := 0; i < childrenCount; i++ {
			elems[i] = childRef(n.Children[i])
		}
		elems[childrenCount] = n.value
		bs, err = rlp.EncodeToBytes(elems)
	case *HashNode:
		panic("can't serialize hash node")
	default:
		panic("invalid MPT node type")
	}
	if err != nil {
		panic(fmt.Sprintf("failed to serialize node: %v", err))
	}
	return bs
}

// childRef returns the reference to use for a child inside its parent's
// body: the raw body for inlined children, the 32-byte digest otherwise.
func childRef(n Node) interface{} {
	switch n := n.(type) {
	case EmptyNode:
		return []byte{}
	case *HashNode:
		return n.hash.Bytes()
	default:
		bs := n.Bytes()
		if len(bs) < common.HashLength {
			return rlp.RawValue(bs)
		}
		return n.Hash().Bytes()
	}
}

// decodeNode parses a serialized node body. A bare hash reference is not a
// valid body.
func decodeNode(data []byte) (Node, error) {
	var val interface{}
	if err := rlp.DecodeBytes(data, &val); err != nil {
		return nil, fmt.Errorf("invalid node RLP: %w", err)
	}
	n, err := nodeFromRLP(val)
	if err != nil {
		return nil, err
	}
	if n.Type() == HashT {
		return nil, errors.New("node body is a bare reference")
	}
	return n, nil
}

func nodeFromRLP(val interface{}) (Node, error) {
	switch val := val.(type) {
	case []byte:
		switch len(val) {
		case 0:
			return EmptyNode{}, nil
		case common.HashLength:
			return NewHashNode(common.BytesToHash(val)), nil
		default:
			return nil, fmt.Errorf("invalid node reference length: %d", len(val))
		}
	case []interface{}:
		switch len(val) {
		case 2:
			compact, ok := val[0].([]byte)
			if !ok {
				return nil, errors.New("invalid path element")
			}
			isLeaf, path, err := CompactDecode(compact)
			if err != nil {
				return nil, err
			}
			if isLeaf {
				value, ok := val[1].([]byte)
				if !ok {
					return nil, errors.New("invalid leaf value element")
				}
				return NewLeafNode(path, value), nil
			}
			if len(path) == 0 {
				return nil, errors.New("extension node with empty path")
			}
			child, err := nodeFromRLP(val[1])
			if err != nil {
				return nil, err
			}
			if isEmpty(child) {
				return nil, errors.New("extension node with empty child")
			}
			return NewExtensionNode(path, child), nil
		case childrenCount + 1:
			b := NewBranchNode()
			for i := 0; i < childrenCount; i++ {
				child, err := nodeFromRLP(val[i])
				if err != nil {
					return nil, err
				}
				b.Children[i] = child
			}
			value, ok := val[childrenCount].([]byte)
			if !ok {
				return nil, errors.New("invalid branch value element")
			}
			if len(value) != 0 {
				b.value = value
			}
			return b, nil
		default:
			return nil, fmt.Errorf("invalid node list length: %d", len(val))
		}
	default:
		return nil, errors.New("invalid node RLP")
	}
}
