package mpt

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"
)

// Fog keeps track of which parts of a trie have been verified to exist
// during an external walk. It holds the set of unexplored key prefixes: a
// fresh fog holds the single empty prefix, meaning the whole trie is
// unexplored. Fog values are immutable, Explore returns a new one. A fog
// knows nothing about an actual trie, pair it with Traverse to walk one.
type Fog struct {
	// prefixes is sorted in nibble-lexicographic order. No prefix starts
	// with another one.
	prefixes [][]byte
}

// NewFog returns a fog with the whole key space unexplored.
func NewFog() *Fog {
	return &Fog{prefixes: [][]byte{{}}}
}

// IsComplete returns true when no unexplored prefixes remain.
func (f *Fog) IsComplete() bool {
	return len(f.prefixes) == 0
}

// bisectRight returns the index of the first prefix greater than key.
func (f *Fog) bisectRight(key []byte) int {
	return sort.Search(len(f.prefixes), func(i int) bool {
		return bytes.Compare(f.prefixes[i], key) > 0
	})
}

// NearestUnknown returns the unexplored prefix nearest to the target in
// nibble-lexicographic distance. When the left and the right neighbours
// are equally distant the right one wins. It returns ErrPerfectVisibility
// when nothing is left to explore.
func (f *Fog) NearestUnknown(target []byte) ([]byte, error) {
	if len(f.prefixes) == 0 {
		return nil, ErrPerfectVisibility
	}
	index := f.bisectRight(target)
	if index == 0 {
		return f.prefixes[0], nil
	}
	if index == len(f.prefixes) {
		return f.prefixes[index-1], nil
	}
	left := f.prefixes[index-1]
	right := f.prefixes[index]
	if compareDistances(prefixDistance(left, target), prefixDistance(target, right)) < 0 {
		return left, nil
	}
	return right, nil
}

// NearestRight returns the smallest unexplored prefix at or after the
// target. It returns ErrPerfectVisibility when the fog is exhausted and
// ErrFullDirectionalVisibility when unexplored prefixes remain only to the
// left of the target.
func (f *Fog) NearestRight(target []byte) ([]byte, error) {
	if len(f.prefixes) == 0 {
		return nil, ErrPerfectVisibility
	}
	index := f.bisectRight(target)
	if index == 0 {
		return f.prefixes[0], nil
	}
	left := f.prefixes[index-1]
	if nibblesAgree(target, left) {
		// The target is inside an unexplored subtree.
		return left, nil
	}
	if index == len(f.prefixes) {
		return nil, fmt.Errorf("%w of %x", ErrFullDirectionalVisibility, target)
	}
	return f.prefixes[index], nil
}

// Explore lifts the fog from the given prefix, narrowing the unexplored
// set down to the prefix's sub-segments. Exploring a prefix that is no
// longer in the fog changes nothing.
func (f *Fog) Explore(prefix []byte, subSegments [][]byte) *Fog {
	index := f.bisectRight(prefix)
	if index == 0 || !bytes.Equal(f.prefixes[index-1], prefix) {
		return f
	}
	result := make([][]byte, 0, len(f.prefixes)-1+len(subSegments))
	result = append(result, f.prefixes[:index-1]...)
	for _, segment := range subSegments {
		result = append(result, concatPaths(prefix, segment))
	}
	result = append(result, f.prefixes[index:]...)
	sort.Slice(result, func(i, j int) bool {
		return bytes.Compare(result[i], result[j]) < 0
	})
	// Keep set semantics even for duplicate sub-segments.
	uniq := result[:0]
	for i := range result {
		if i == 0 || !bytes.Equal(result[i], result[i-1]) {
			uniq = append(uniq, result[i])
		}
	}
	return &Fog{prefixes: uniq}
}

// fogMagic prefixes a serialized fog.
var fogMagic = []byte("HexaryTrieFog:")

// Serialize returns a compact byte representation of the fog suitable for
// DeserializeFog.
func (f *Fog) Serialize() ([]byte, error) {
	packed := make([][]byte, len(f.prefixes))
	for i := range f.prefixes {
		packed[i] = CompactEncode(false, f.prefixes[i])
	}
	body, err := rlp.EncodeToBytes(packed)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize fog: %w", err)
	}
	return append(copySlice(fogMagic), body...), nil
}

// DeserializeFog restores a fog from its Serialize output.
func DeserializeFog(data []byte) (*Fog, error) {
	if !bytes.HasPrefix(data, fogMagic) {
		return nil, errors.New("not a serialized fog")
	}
	var packed [][]byte
	if err := rlp.DecodeBytes(data[len(fogMagic):], &packed); err != nil {
		return nil, fmt.Errorf("failed to deserialize fog: %w", err)
	}
	prefixes := make([][]byte, len(packed))
	for i := range packed {
		isLeaf, path, err := CompactDecode(packed[i])
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize fog: %w", err)
		}
		if isLeaf {
			return nil, errors.New("failed to deserialize fog: unexpected leaf flag")
		}
		prefixes[i] = path
	}
	sort.Slice(prefixes, func(i, j int) bool {
		return bytes.Compare(prefixes[i], prefixes[j]) < 0
	})
	return &Fog{prefixes: prefixes}, nil
}

// prefixDistance measures how far the two keys are from each other as a
// sequence of per-nibble differences, low key first. Only the relative
// order of two distances matters, see compareDistances.
func prefixDistance(low, high []byte) []int {
	n := len(low)
	if len(high) > n {
		n = len(high)
	}
	dist := make([]int, n)
	for i := 0; i < n; i++ {
		l := 15
		if i < len(low) {
			l = int(low[i])
		}
		h := 0
		if i < len(high) {
			h = int(high[i])
		}
		dist[i] = h - l
	}
	return dist
}

func compareDistances(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
