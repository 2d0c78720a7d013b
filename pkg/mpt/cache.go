package mpt

import (
	lru "github.com/hashicorp/golang-lru"
)

// FrontierCache keeps a bounded cache of annotated nodes for use with
// TraverseFrom. Paired with a Fog it holds just the frontier of an ongoing
// walk, so that expanding into an unexplored prefix costs one store lookup
// instead of a root-down traversal. The cache is read-through only, it is
// the caller's duty to drop entries invalidated by trie mutations.
type FrontierCache struct {
	cache *lru.Cache
}

type frontierEntry struct {
	parent  *TrieNode
	segment []byte
}

// NewFrontierCache creates a new FrontierCache holding up to size entries.
func NewFrontierCache(size int) (*FrontierCache, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &FrontierCache{cache: cache}, nil
}

// Get finds the cached parent of the given prefix together with the
// segment leading from the parent to the prefix.
func (c *FrontierCache) Get(prefix []byte) (*TrieNode, []byte, bool) {
	val, ok := c.cache.Get(string(prefix))
	if !ok {
		return nil, nil, false
	}
	entry := val.(frontierEntry)
	return entry.parent, entry.segment, true
}

// Add caches node as the parent of each of its sub-segments, making
// Get(nodePrefix + segment) resolvable. The node's own entry is dropped,
// it is not a frontier anymore.
func (c *FrontierCache) Add(nodePrefix []byte, node *TrieNode, subSegments [][]byte) {
	if len(nodePrefix) != 0 {
		c.cache.Remove(string(nodePrefix))
	}
	for _, segment := range subSegments {
		c.cache.Add(string(concatPaths(nodePrefix, segment)), frontierEntry{
			parent:  node,
			segment: segment,
		})
	}
}

// Delete drops the cache entry for the given prefix. Removing a missing
// prefix is a no-op.
func (c *FrontierCache) Delete(prefix []byte) {
	c.cache.Remove(string(prefix))
}
