package collection

import "sort"

// Selection is a set of selected record ids. It is not safe for
// concurrent use; Engine guards it.
type Selection struct {
	ids map[string]struct{}
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: make(map[string]struct{})}
}

// Toggle adds id if absent, removes it if present. Visibility is not
// checked; reconciliation drops invisible ids on the next view change.
func (s *Selection) Toggle(id string) {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

// SelectAllVisible clears the selection when every visible record is
// already selected (same size, non-empty view). Otherwise the selection
// becomes exactly the visible ids.
func (s *Selection) SelectAllVisible(visibleIDs []string) {
	if len(visibleIDs) > 0 && len(s.ids) == len(visibleIDs) {
		s.Clear()
		return
	}
	next := make(map[string]struct{}, len(visibleIDs))
	for _, id := range visibleIDs {
		next[id] = struct{}{}
	}
	s.ids = next
}

// Clear empties the selection.
func (s *Selection) Clear() {
	if len(s.ids) == 0 {
		return
	}
	s.ids = make(map[string]struct{})
}

// Reconcile drops every selected id that is not in visibleIDs and
// reports whether the selection changed.
func (s *Selection) Reconcile(visibleIDs []string) bool {
	if len(s.ids) == 0 {
		return false
	}
	visible := make(map[string]struct{}, len(visibleIDs))
	for _, id := range visibleIDs {
		visible[id] = struct{}{}
	}
	changed := false
	for id := range s.ids {
		if _, ok := visible[id]; !ok {
			delete(s.ids, id)
			changed = true
		}
	}
	return changed
}

// Has reports whether id is selected.
func (s *Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected ids.
func (s *Selection) Len() int {
	return len(s.ids)
}

// IDs returns the selected ids, sorted.
func (s *Selection) IDs() []string {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
