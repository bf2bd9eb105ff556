package state

import "github.com/gridloom/gridloom/internal/event"

// Group collapse accessors. These mutate only the collapsed-id set and
// publish toggle events; they never touch row data. The grouping
// engine owns which group ids exist.

// ToggleGroup flips one group's collapsed flag.
func (s *Store) ToggleGroup(groupID string) {
	collapsed := !s.collapsed[groupID]
	if collapsed {
		s.collapsed[groupID] = true
	} else {
		delete(s.collapsed, groupID)
	}
	s.bus.Publish(event.Event{
		Type:        event.KindGroupToggle,
		GroupToggle: &event.GroupToggle{GroupID: groupID, Collapsed: collapsed},
	})
}

// IsGroupCollapsed reports one group's collapsed flag.
func (s *Store) IsGroupCollapsed(groupID string) bool {
	return s.collapsed[groupID]
}

// ExpandAllGroups clears the collapsed set.
func (s *Store) ExpandAllGroups() {
	s.collapsed = make(map[string]bool)
	s.bus.Publish(event.Event{Type: event.KindGroupExpandAll})
}

// CollapseAllGroups collapses every listed group. The caller supplies
// the current group ids because the store does not derive partitions.
func (s *Store) CollapseAllGroups(groupIDs []string) {
	s.collapsed = make(map[string]bool, len(groupIDs))
	for _, id := range groupIDs {
		s.collapsed[id] = true
	}
	s.bus.Publish(event.Event{Type: event.KindGroupCollapseAll})
}
