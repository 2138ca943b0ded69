package cache

import (
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// snapshot is the offline image of a Store, so the app can render
// stale lists at startup before the first refresh lands.
type snapshot[T Entity] struct {
	Lists map[int64][]T `msgpack:"lists"`
}

// Encode serializes the store's accumulated lists with msgpack.
func (s *Store[T]) Encode() ([]byte, error) {
	s.mu.Lock()
	snap := snapshot[T]{Lists: make(map[int64][]T, len(s.lists))}
	for parentId, list := range s.lists {
		copied := make([]T, len(list))
		copy(copied, list)
		snap.Lists[parentId] = copied
	}
	s.mu.Unlock()

	return msgpack.Marshal(&snap)
}

// Restore replaces the store's contents with a previously encoded
// snapshot and notifies every restored parent.
func (s *Store[T]) Restore(raw []byte) error {
	var snap snapshot[T]
	if err := msgpack.Unmarshal(raw, &snap); err != nil {
		return err
	}

	s.mu.Lock()
	s.lists = map[int64][]T{}
	s.owner = map[int64]int64{}
	for parentId, list := range snap.Lists {
		kept := make([]T, 0, len(list))
		for _, item := range list {
			id := item.EntityId()
			if _, dup := s.owner[id]; dup {
				continue
			}
			s.owner[id] = parentId
			kept = append(kept, item)
		}
		s.lists[parentId] = kept
	}
	parents := make([]int64, 0, len(s.lists))
	for parentId := range s.lists {
		parents = append(parents, parentId)
	}
	s.mu.Unlock()

	for _, parentId := range parents {
		s.notify(parentId)
	}
	return nil
}

// SaveFile writes the snapshot to disk.
func (s *Store[T]) SaveFile(path string) error {
	raw, err := s.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

// LoadFile restores a snapshot from disk. A missing file is not an
// error; the store is simply left empty.
func (s *Store[T]) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.Restore(raw)
}
