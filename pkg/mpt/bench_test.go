package mpt

import (
	"encoding/binary"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hexary-dev/hexary/pkg/storage"
)

func prepareBenchTrie(b *testing.B, size int) *Trie {
	tr := NewTrie(common.Hash{}, Config{Store: storage.NewMemoryStore()})
	key := make([]byte, 8)
	for i := 0; i < size; i++ {
		binary.BigEndian.PutUint64(key, uint64(i))
		if err := tr.Put(key, key); err != nil {
			b.Fatal(err)
		}
	}
	return tr
}

func benchTrieGet(b *testing.B, size int) {
	tr := prepareBenchTrie(b, size)
	key := make([]byte, 8)
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		binary.BigEndian.PutUint64(key, uint64(i%size))
		if _, err := tr.Get(key); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTrieGet(b *testing.B) {
	b.Run("100", func(b *testing.B) { benchTrieGet(b, 100) })
	b.Run("10000", func(b *testing.B) { benchTrieGet(b, 10000) })
}

func BenchmarkTriePut(b *testing.B) {
	tr := NewTrie(common.Hash{}, Config{Store: storage.NewMemoryStore()})
	key := make([]byte, 8)
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		binary.BigEndian.PutUint64(key, uint64(i))
		if err := tr.Put(key, key); err != nil {
			b.Fatal(err)
		}
	}
}
