package lang

import (
	"iter"
	"strings"
	"sync"
	"sync/atomic"
)

// scopeSeq numbers scopes so caches can tell them apart.
var scopeSeq atomic.Uint64

// Scope is an ordered, case-insensitive name → value environment.
//
// Entries may be flagged constant: the host promises they never change for
// the lifetime of the scope, so expressions reading them can be folded.
// A Scope is itself a MutableObject, which lets scopes nest as namespaces
// (math.pi, query.x, temp.y).
//
// Scope is safe for concurrent use.
type Scope struct {
	id       uint64
	mu       sync.RWMutex
	index    map[string]int
	entries  []scopeEntry
	readOnly bool
}

type scopeEntry struct {
	name     string
	value    Value
	constant bool
}

// NewScope returns an empty, writable scope.
func NewScope() *Scope {
	return &Scope{id: scopeSeq.Add(1), index: make(map[string]int)}
}

func scopeKey(name string) string { return strings.ToLower(name) }

// Type implements Value.
func (*Scope) Type() Type { return TypeObject }

// Get returns the named value, or Zero if it is not bound.
func (s *Scope) Get(name string) Value {
	v, _ := s.Lookup(name)

	return v
}

// Lookup returns the named value and whether it is bound.
func (s *Scope) Lookup(name string) (Value, bool) {
	if s == nil {
		return Zero, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if i, ok := s.index[scopeKey(name)]; ok {
		return s.entries[i].value, true
	}

	return Zero, false
}

// Set binds name to v and reports whether the write was accepted.
// A nil v removes the binding. Writes to a read-only scope are rejected.
func (s *Scope) Set(name string, v Value) bool {
	return s.set(name, v, false)
}

// SetConstant binds name to v and flags the entry as constant.
func (s *Scope) SetConstant(name string, v Value) bool {
	return s.set(name, v, true)
}

func (s *Scope) set(name string, v Value, constant bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readOnly {
		return false
	}

	if s.index == nil {
		s.index = make(map[string]int)
	}

	k := scopeKey(name)
	i, ok := s.index[k]

	switch {
	case v == nil && ok:
		s.entries = append(s.entries[:i], s.entries[i+1:]...)
		delete(s.index, k)

		for j := i; j < len(s.entries); j++ {
			s.index[s.entries[j].name] = j
		}
	case v == nil:
	case ok:
		s.entries[i].value = v
		s.entries[i].constant = constant
	default:
		s.index[k] = len(s.entries)
		s.entries = append(s.entries, scopeEntry{name: k, value: v, constant: constant})
	}

	return true
}

// IsConstant reports whether name is bound and flagged constant.
func (s *Scope) IsConstant(name string) bool {
	if s == nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if i, ok := s.index[scopeKey(name)]; ok {
		return s.entries[i].constant
	}

	return false
}

// SetReadOnly toggles whether Set is rejected.
func (s *Scope) SetReadOnly(readOnly bool) {
	s.mu.Lock()
	s.readOnly = readOnly
	s.mu.Unlock()
}

// IsReadOnly reports whether the scope rejects writes.
func (s *Scope) IsReadOnly() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.readOnly
}

// Copy returns a writable scope with the same entries. Values are shared,
// not cloned.
func (s *Scope) Copy() *Scope {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := &Scope{
		id:      scopeSeq.Add(1),
		index:   make(map[string]int, len(s.index)+2),
		entries: make([]scopeEntry, len(s.entries), len(s.entries)+2),
	}

	copy(c.entries, s.entries)

	for k, i := range s.index {
		c.index[k] = i
	}

	return c
}

// Len returns the number of bindings.
func (s *Scope) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// Names returns the bound names in insertion order.
func (s *Scope) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.entries))
	for i, e := range s.entries {
		names[i] = e.name
	}

	return names
}

// Entries returns an iterator over a snapshot of the bindings in insertion
// order.
func (s *Scope) Entries() iter.Seq2[string, Value] {
	s.mu.RLock()
	snapshot := make([]scopeEntry, len(s.entries))
	copy(snapshot, s.entries)
	s.mu.RUnlock()

	return func(yield func(string, Value) bool) {
		for _, e := range snapshot {
			if !yield(e.name, e.value) {
				return
			}
		}
	}
}
