/*
Package mpt implements a hexary Merkle Patricia Trie: a content-addressed
key-value map whose 32-byte root hash commits to the complete contents.
Keys and values are arbitrary byte strings (the empty value means
deletion), node bodies are canonical RLP keyed in the backing store by
their keccak-256 digest, and bodies shorter than 32 bytes are embedded in
their parent instead of being stored. Two tries holding the same map always
share the same root hash, whatever the operation order was.

The trie itself holds nothing but the root hash and a store handle. Reads
resolve bodies through the store on demand; mutations rebuild the spine
from the touched leaf up to a new root and write the replaced bodies back.
A missing body surfaces as MissingTrieNodeError (or its traversal
flavour), carrying the missing key and the position of the fault.

With Config.Prune enabled the trie garbage-collects superseded bodies
after each successful mutation. Pruning is only safe against a store whose
contents are owned by this trie alone, starting from empty: a store that
held a node body before this trie wrote it can lose that body while some
other root still references it. Reference counting of prior residents is
deliberately not implemented; batch work with SquashChanges when the store
is shared.

Traverse, Fog and FrontierCache together support enumerating an unknown
trie: Traverse reports each node's outgoing segments (with
TraversedPartialPathError simulating a node when a target lands inside a
segment), the fog tracks which prefixes remain unexplored and the cache
keeps frontier bodies so expansion costs one store read. GetProof and
VerifyProof produce and check standalone Merkle proofs for both present
and absent keys.
*/
package mpt
