// Package visibility tracks which layers of the loaded scene are hidden.
package visibility

import "slices"

// Set is the set of hidden layer indices for a scene with a fixed layer
// count. Indices outside [0, count) are never stored.
type Set struct {
	count  int
	hidden map[int]struct{}
}

// New returns an empty set for a scene with count layers.
func New(count int) *Set {
	return &Set{count: max(count, 0), hidden: make(map[int]struct{})}
}

// Reset empties the set and rebinds it to a scene with count layers.
func (s *Set) Reset(count int) {
	s.count = max(count, 0)
	clear(s.hidden)
}

// Len returns the layer count the set is bound to.
func (s *Set) Len() int { return s.count }

// Toggle hides a visible layer or shows a hidden one. It reports false and
// does nothing when index is out of range.
func (s *Set) Toggle(index int) bool {
	if index < 0 || index >= s.count {
		return false
	}
	if _, ok := s.hidden[index]; ok {
		delete(s.hidden, index)
	} else {
		s.hidden[index] = struct{}{}
	}
	return true
}

// ShowAll clears the set. The layer count is rebound to n.
func (s *Set) ShowAll(n int) {
	s.Reset(n)
}

// HideAll hides every index in [0, n).
func (s *Set) HideAll(n int) {
	s.Reset(n)
	for i := 0; i < s.count; i++ {
		s.hidden[i] = struct{}{}
	}
}

// IsHidden reports whether the layer at index is hidden.
func (s *Set) IsHidden(index int) bool {
	_, ok := s.hidden[index]
	return ok
}

// Hidden returns the hidden indices in ascending order.
func (s *Set) Hidden() []int {
	out := make([]int, 0, len(s.hidden))
	for i := range s.hidden {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

// Visible returns a flag per layer, true when the layer is drawn.
func (s *Set) Visible() []bool {
	out := make([]bool, s.count)
	for i := range out {
		out[i] = !s.IsHidden(i)
	}
	return out
}
