package storage

import (
	"sync"
)

// OverlayStore is a wrapper around a persistent store that stages all
// changes being made for them to be later flushed in one batch. Reads are
// served from the staged changes first and fall through to the lower store.
// A key staged for deletion still reads through to the lower store: deletes
// are prune candidates and must not hide node bodies before the batch is
// committed.
type OverlayStore struct {
	mut sync.RWMutex
	mem map[string][]byte
	del map[string]bool

	// Lower persistent store.
	ps Store
}

// NewOverlayStore creates a new OverlayStore object on top of the lower
// store.
func NewOverlayStore(lower Store) *OverlayStore {
	return &OverlayStore{
		mem: make(map[string][]byte),
		del: make(map[string]bool),
		ps:  lower,
	}
}

// Get implements the Store interface.
func (s *OverlayStore) Get(key []byte) ([]byte, error) {
	s.mut.RLock()
	defer s.mut.RUnlock()
	if val, ok := s.mem[string(key)]; ok {
		return val, nil
	}
	return s.ps.Get(key)
}

// Put implements the Store interface, staging the pair until Persist.
// Never returns an error.
func (s *OverlayStore) Put(key, value []byte) error {
	s.mut.Lock()
	k := string(key)
	s.mem[k] = value
	delete(s.del, k)
	s.mut.Unlock()
	return nil
}

// Delete implements the Store interface, staging the removal until Persist.
// Never returns an error.
func (s *OverlayStore) Delete(key []byte) error {
	s.mut.Lock()
	k := string(key)
	delete(s.mem, k)
	s.del[k] = true
	s.mut.Unlock()
	return nil
}

// Contains implements the Store interface.
func (s *OverlayStore) Contains(key []byte) (bool, error) {
	s.mut.RLock()
	defer s.mut.RUnlock()
	if _, ok := s.mem[string(key)]; ok {
		return true, nil
	}
	return s.ps.Contains(key)
}

// Dirty returns true if the overlay has staged changes.
func (s *OverlayStore) Dirty() bool {
	s.mut.RLock()
	defer s.mut.RUnlock()
	return len(s.mem) != 0 || len(s.del) != 0
}

// Persist flushes all staged changes into the lower store. Staged
// deletions are applied only when applyDeletes is set, otherwise they are
// dropped. The overlay is empty after a successful Persist.
func (s *OverlayStore) Persist(applyDeletes bool) error {
	s.mut.Lock()
	defer s.mut.Unlock()
	for k, v := range s.mem {
		if err := s.ps.Put([]byte(k), v); err != nil {
			return err
		}
	}
	if applyDeletes {
		for k := range s.del {
			if err := s.ps.Delete([]byte(k)); err != nil {
				return err
			}
		}
	}
	s.mem = make(map[string][]byte)
	s.del = make(map[string]bool)
	return nil
}

// Discard drops all staged changes leaving the lower store untouched.
func (s *OverlayStore) Discard() {
	s.mut.Lock()
	s.mem = make(map[string][]byte)
	s.del = make(map[string]bool)
	s.mut.Unlock()
}

// Close implements the Store interface, discarding any staged changes. The
// lower store is left open.
func (s *OverlayStore) Close() error {
	s.Discard()
	return nil
}
