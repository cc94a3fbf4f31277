package targeting

import "github.com/udisondev/skirmish/internal/model"

// AvoidSet remembers units already picked by consecutive same-side AI
// turns so single-target picks spread out. The battle clears it whenever
// control passes to the other side.
//
// A nil *AvoidSet is empty.
type AvoidSet struct {
	ids map[string]struct{}
}

// NewAvoidSet creates an empty set.
func NewAvoidSet() *AvoidSet {
	return &AvoidSet{ids: make(map[string]struct{})}
}

// Add records units.
func (s *AvoidSet) Add(units ...*model.Combatant) {
	for _, u := range units {
		if u != nil {
			s.ids[u.ID()] = struct{}{}
		}
	}
}

// Contains reports whether u was recorded.
func (s *AvoidSet) Contains(u *model.Combatant) bool {
	if s == nil || u == nil {
		return false
	}
	_, ok := s.ids[u.ID()]
	return ok
}

// Len returns the number of recorded units.
func (s *AvoidSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// Clear forgets every unit.
func (s *AvoidSet) Clear() {
	clear(s.ids)
}
