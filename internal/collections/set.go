// Package collections holds small generic containers shared across the
// engine.
package collections

// Set is a map-backed set with zero-size values
type Set[T comparable] map[T]struct{}

// NewSet creates a Set holding the given initial values
func NewSet[T comparable](vs ...T) Set[T] {
	s := Set[T]{}
	s.Add(vs...)
	return s
}

// Add inserts one or more values
func (s Set[T]) Add(vs ...T) {
	for _, v := range vs {
		s[v] = struct{}{}
	}
}

// Has reports whether the set contains v
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}
