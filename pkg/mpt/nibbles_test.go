package mpt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToNibblesFromNibbles(t *testing.T) {
	check := func(t *testing.T, b []byte) {
		nibbles := toNibbles(b)
		require.Equal(t, len(b)*2, len(nibbles))
		for _, n := range nibbles {
			require.Less(t, n, byte(0x10))
		}
		actual, err := fromNibbles(nibbles)
		require.NoError(t, err)
		require.Equal(t, b, actual)
	}
	t.Run("empty", func(t *testing.T) { check(t, []byte{}) })
	t.Run("single", func(t *testing.T) { check(t, []byte{0xAC}) })
	t.Run("multiple", func(t *testing.T) { check(t, []byte{0x01, 0xAC, 0x8d, 0x04, 0xFF}) })
	t.Run("odd length", func(t *testing.T) {
		_, err := fromNibbles([]byte{0x01, 0x02, 0x03})
		require.ErrorIs(t, err, ErrOddNibbles)
	})
}

func TestCompactEncoding(t *testing.T) {
	testCases := []struct {
		isLeaf  bool
		path    []byte
		compact []byte
	}{
		{false, []byte{}, []byte{0x00}},
		{true, []byte{}, []byte{0x20}},
		{false, []byte{0x01, 0x02, 0x03, 0x04, 0x05}, []byte{0x11, 0x23, 0x45}},
		{false, []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05}, []byte{0x00, 0x01, 0x23, 0x45}},
		{true, []byte{0x0f, 0x01, 0x0c, 0x0b, 0x08}, []byte{0x3f, 0x1c, 0xb8}},
		{true, []byte{0x00, 0x0f, 0x01, 0x0c, 0x0b, 0x08}, []byte{0x20, 0x0f, 0x1c, 0xb8}},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.compact, CompactEncode(tc.isLeaf, tc.path))

		isLeaf, path, err := CompactDecode(tc.compact)
		require.NoError(t, err)
		require.Equal(t, tc.isLeaf, isLeaf)
		require.Equal(t, tc.path, path)
	}
}

func TestCompactDecodeInvalid(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, _, err := CompactDecode([]byte{})
		require.Error(t, err)
	})
	t.Run("bad flag", func(t *testing.T) {
		_, _, err := CompactDecode([]byte{0x40})
		require.Error(t, err)
	})
	t.Run("non-zero padding", func(t *testing.T) {
		_, _, err := CompactDecode([]byte{0x05, 0x12})
		require.Error(t, err)
	})
}

func TestCompactRoundTrip(t *testing.T) {
	paths := [][]byte{
		{},
		{0x0a},
		{0x0f, 0x00},
		toNibbles([]byte("my-key")),
		toNibbles([]byte("my-other-key"))[7:],
	}
	for _, isLeaf := range []bool{false, true} {
		for _, path := range paths {
			gotLeaf, gotPath, err := CompactDecode(CompactEncode(isLeaf, path))
			require.NoError(t, err)
			require.Equal(t, isLeaf, gotLeaf)
			require.Equal(t, path, gotPath)
		}
	}
}

func TestLCP(t *testing.T) {
	require.Equal(t, []byte{}, lcp([]byte{0x01}, []byte{0x02}))
	require.Equal(t, []byte{0x01}, lcp([]byte{0x01, 0x02}, []byte{0x01, 0x03}))
	require.Equal(t, []byte{0x01, 0x02}, lcp([]byte{0x01, 0x02}, []byte{0x01, 0x02, 0x03}))
}
