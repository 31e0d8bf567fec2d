package esp

import "sort"

// Store is the flat variable namespace of a running script.
type Store struct {
	values map[string]Value
}

func NewStore() *Store {
	return &Store{values: make(map[string]Value)}
}

// Get reports whether name is bound. A name bound to Empty returns
// (Empty, true); an unbound name returns (Empty, false).
func (s *Store) Get(name string) (Value, bool) {
	val, ok := s.values[name]
	return val, ok
}

func (s *Store) Set(name string, val Value) {
	s.values[name] = val
}

func (s *Store) Len() int { return len(s.values) }

// Names returns the bound identifiers in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Store) Clear() {
	clear(s.values)
}

func (s *Store) Clone() *Store {
	clone := NewStore()
	for k, v := range s.values {
		clone.values[k] = v
	}
	return clone
}
