package workflow

// NodeConnections are the direct neighbours of a node: sources feed into it,
// targets receive from it.
type NodeConnections struct {
	Sources []Node `json:"sources"`
	Targets []Node `json:"targets"`
}

// Connections computes the node's direct neighbours from current state.
// Results are in edge insertion order (first-connected first) and are never
// cached — every call re-derives from the live node and edge collections.
// Edges whose far endpoint no longer exists are skipped.
func (s *Store) Connections(nodeID string) NodeConnections {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conns := NodeConnections{Sources: []Node{}, Targets: []Node{}}
	for _, e := range s.edges {
		if e.Target == nodeID {
			if idx := s.indexOfLocked(e.Source); idx >= 0 {
				conns.Sources = append(conns.Sources, s.nodes[idx].clone())
			}
		}
		if e.Source == nodeID {
			if idx := s.indexOfLocked(e.Target); idx >= 0 {
				conns.Targets = append(conns.Targets, s.nodes[idx].clone())
			}
		}
	}
	return conns
}

// Downstream returns only the direct targets of nodeID, in edge insertion
// order.
func (s *Store) Downstream(nodeID string) []Node {
	return s.Connections(nodeID).Targets
}
