package mpt

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestIterator_Order(t *testing.T) {
	tr := newTestTrie(t, map[string]string{
		"doge":         "coin",
		"my-other-key": "another-value",
		"do":           "verb",
		"horse":        "stallion",
		"dog":          "puppy",
		"my-key":       "some-value",
	})

	var keys, values []string
	it := NewIterator(tr)
	for it.Next() {
		keys = append(keys, string(it.Key()))
		values = append(values, string(it.Value()))
	}
	require.NoError(t, it.Err())
	require.Equal(t, []string{"do", "dog", "doge", "horse", "my-key", "my-other-key"}, keys)
	require.Equal(t, []string{"verb", "puppy", "coin", "stallion", "some-value", "another-value"}, values)
}

func TestIterator_Empty(t *testing.T) {
	tr := newTestTrie(t, nil)
	it := NewIterator(tr)
	require.False(t, it.Next())
	require.NoError(t, it.Err())
}

func TestIterator_SingleKey(t *testing.T) {
	tr := newTestTrie(t, map[string]string{"my-key": "some-value"})
	it := NewIterator(tr)
	require.True(t, it.Next())
	require.Equal(t, []byte("my-key"), it.Key())
	require.Equal(t, toNibbles([]byte("my-key")), it.Path())
	require.Equal(t, []byte("some-value"), it.Value())
	require.False(t, it.Next())
	require.NoError(t, it.Err())
}

func TestIterator_Restartable(t *testing.T) {
	tr := newTestTrie(t, map[string]string{
		"do":  "verb",
		"dog": "puppy",
	})
	first := NewIterator(tr)
	require.True(t, first.Next())
	require.Equal(t, []byte("do"), first.Key())

	// A second iterator starts from the beginning independently.
	second := NewIterator(tr)
	require.True(t, second.Next())
	require.Equal(t, []byte("do"), second.Key())

	require.True(t, first.Next())
	require.Equal(t, []byte("dog"), first.Key())
	require.False(t, first.Next())
}

func TestIterator_MissingNode(t *testing.T) {
	store := newTestStore()
	tr := NewTrie(common.Hash{}, Config{Store: store})
	require.NoError(t, tr.Put([]byte("my-key"), []byte("some-value")))
	require.NoError(t, tr.Put([]byte("my-other-key"), []byte("another-value")))

	branch, err := tr.Traverse([]byte{0x6, 0xd, 0x7, 0x9, 0x2, 0xd, 0x6})
	require.NoError(t, err)
	require.NoError(t, store.Delete(branch.Raw.Hash().Bytes()))

	it := NewIterator(tr)
	for it.Next() {
	}
	require.Error(t, it.Err())
}
