package mpt

import (
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/hexary-dev/hexary/pkg/storage"
)

// SquashChanges runs fn against a batched view of t. All node writes made
// by fn are staged in an in-memory overlay together with the prune
// candidates they supersede; when fn returns nil the overlay is flushed to
// the store in one batch (stale bodies are deleted only when t itself
// prunes) and t adopts the new root. When fn returns an error, notably
// after a MissingTrieNodeError fault, the overlay and the prune candidates
// are dropped and t keeps its pre-transaction root hash.
//
// A squash that performs no mutations doesn't touch the store at all.
func (t *Trie) SquashChanges(fn func(batched *Trie) error) error {
	overlay := storage.NewOverlayStore(t.store)
	refs := t.refCount
	if refs == nil {
		refs = make(map[common.Hash]int)
	}
	scratch := &Trie{
		store:    overlay,
		root:     t.root,
		prune:    true,
		log:      t.log,
		refCount: refs,
	}
	if err := fn(scratch); err != nil {
		overlay.Discard()
		t.log.Debug("squash rolled back",
			zap.String("root", t.root.TerminalString()),
			zap.Error(err))
		return err
	}
	if overlay.Dirty() {
		if err := overlay.Persist(t.prune); err != nil {
			overlay.Discard()
			return err
		}
		t.log.Debug("squash committed",
			zap.String("old", t.root.TerminalString()),
			zap.String("new", scratch.root.TerminalString()))
	}
	t.root = scratch.root
	return nil
}
