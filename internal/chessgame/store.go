package chessgame

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

const DefaultShards = 32

// Store maps session keys to game state. The map is split into shards so that
// lookups for different keys rarely contend; each entry carries its own lock
// which is held for the whole of one WithSession call.
type Store struct {
	shards  []*shard
	initial Position
}

type shard struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	mu    sync.Mutex
	state State
}

// NewStore creates an empty store whose sessions start from initial.
func NewStore(shards int, initial Position) *Store {
	if shards <= 0 {
		shards = DefaultShards
	}
	s := &Store{shards: make([]*shard, shards), initial: initial}
	for i := range s.shards {
		s.shards[i] = &shard{entries: make(map[string]*entry)}
	}
	return s
}

// WithSession runs fn with exclusive access to the state of key, creating a
// fresh state on first use. fn works on a copy; the copy replaces the stored
// state only when fn returns normally, so a panic inside fn commits nothing.
func (s *Store) WithSession(key string, fn func(st *State)) {
	e := s.entry(key, true)
	e.mu.Lock()
	defer e.mu.Unlock()
	work := e.state.clone()
	fn(&work)
	e.state = work
}

// Snapshot returns a copy of the state for key without creating it.
func (s *Store) Snapshot(key string) (State, bool) {
	e := s.entry(key, false)
	if e == nil {
		return State{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone(), true
}

// Len returns the number of sessions seen so far.
func (s *Store) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += len(sh.entries)
		sh.mu.Unlock()
	}
	return n
}

func (s *Store) fresh() State { return State{Position: s.initial} }

func (s *Store) entry(key string, create bool) *entry {
	sh := s.shards[xxhash.Sum64String(key)%uint64(len(s.shards))]
	sh.mu.Lock()
	defer sh.mu.Unlock()
	e, ok := sh.entries[key]
	if !ok && create {
		e = &entry{state: s.fresh()}
		sh.entries[key] = e
	}
	return e
}
