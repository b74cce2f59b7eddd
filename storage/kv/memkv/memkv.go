// Package memkv provides an in-memory kv.Store for tests and ephemeral runs.
package memkv

import (
	"sort"
	"sync"

	"github.com/dkonate/ecolia/storage/kv"
)

type Store struct {
	t     map[string][]byte
	mutex sync.RWMutex
}

var _ kv.Store = (*Store)(nil)

func Open() *Store {
	return &Store{t: make(map[string][]byte)}
}

func (s *Store) Get(collection string) ([]byte, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	data, ok := s.t[collection]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, true, nil
}

func (s *Store) Set(collection string, data []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cp := make([]byte, len(data))
	copy(cp, data)
	s.t[collection] = cp
	return nil
}

func (s *Store) Delete(collection string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.t, collection)
	return nil
}

func (s *Store) Collections() ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	cols := make([]string, 0, len(s.t))
	for col := range s.t {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols, nil
}

func (s *Store) Clear() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.t = make(map[string][]byte)
	return nil
}
