// Package selection tracks the set of entity IDs selected for bulk actions
// in a list view. Selection is a property of the view session only and is
// never persisted.
package selection

// Set is an insertion-ordered set of entity IDs. The zero value is ready to
// use. It is not safe for concurrent use; each view owns its own Set.
type Set struct {
	members map[string]bool
	order   []string
}

// New returns an empty selection set.
func New() *Set {
	return &Set{members: make(map[string]bool)}
}

func (s *Set) init() {
	if s.members == nil {
		s.members = make(map[string]bool)
	}
}

// Toggle flips membership of id. Toggling twice restores the original state.
func (s *Set) Toggle(id string) {
	s.init()
	if s.members[id] {
		delete(s.members, id)
		for i, existing := range s.order {
			if existing == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		return
	}
	s.members[id] = true
	s.order = append(s.order, id)
}

// SelectAll replaces the selection with exactly the given ids, collapsing
// duplicates. It is a replacement, not a union: "select all" means all
// currently visible items, and must be re-run when the visible list changes.
func (s *Set) SelectAll(ids []string) {
	s.members = make(map[string]bool, len(ids))
	s.order = s.order[:0]
	for _, id := range ids {
		if !s.members[id] {
			s.members[id] = true
			s.order = append(s.order, id)
		}
	}
}

// Clear empties the selection. Views call this after a bulk-delete success
// instead of pruning deleted ids, because the list is refetched anyway.
func (s *Set) Clear() {
	s.members = make(map[string]bool)
	s.order = s.order[:0]
}

// Has reports whether id is selected.
func (s *Set) Has(id string) bool {
	return s.members[id]
}

// Size returns the number of selected ids.
func (s *Set) Size() int {
	return len(s.members)
}

// IDs returns the selected ids in insertion order. The slice is a copy.
func (s *Set) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
