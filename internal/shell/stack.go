package shell

import "slices"

// stack holds window ids ordered back to front. The last element is the
// front window.
type stack struct {
	ids []string
}

func newStack(ids []string) *stack {
	return &stack{ids: slices.Clone(ids)}
}

// raise moves id to the front. Returns false if id is not stacked.
func (s *stack) raise(id string) bool {
	i := slices.Index(s.ids, id)
	if i < 0 {
		return false
	}
	if i == len(s.ids)-1 {
		return true
	}
	s.ids = append(s.ids[:i], s.ids[i+1:]...)
	s.ids = append(s.ids, id)
	return true
}

// front returns the front-most id for which keep returns true.
func (s *stack) front(keep func(id string) bool) string {
	for i := len(s.ids) - 1; i >= 0; i-- {
		if keep(s.ids[i]) {
			return s.ids[i]
		}
	}
	return ""
}

// ranks maps each id to its position, 0 being the back.
func (s *stack) ranks() map[string]int {
	r := make(map[string]int, len(s.ids))
	for i, id := range s.ids {
		r[id] = i
	}
	return r
}

// retain drops ids missing from order and places ids new to the stack at
// the back, preserving the relative order of surviving ids.
func (s *stack) retain(order []string) {
	known := make(map[string]bool, len(order))
	for _, id := range order {
		known[id] = true
	}

	kept := s.ids[:0]
	seen := make(map[string]bool, len(order))
	for _, id := range s.ids {
		if known[id] {
			kept = append(kept, id)
			seen[id] = true
		}
	}

	var added []string
	for _, id := range order {
		if !seen[id] {
			added = append(added, id)
		}
	}
	s.ids = append(added, kept...)
}
