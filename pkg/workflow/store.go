package workflow

import (
	"fmt"
	"log/slog"
	"sync"
)

// Store is the sole owner of the node and edge collections. All mutation goes
// through it; reads return copies so callers never alias store-owned state.
//
// Every mutation commits under a single lock acquisition and publishes its
// events only after the new state is in place, so watchers and concurrent
// readers never observe a half-applied transition (in particular, a node is
// never gone while an edge still references it).
type Store struct {
	mu       sync.RWMutex
	nodes    []*Node
	edges    []Edge
	selected string
	edgeSeq  int

	watchMu  sync.Mutex
	watchers map[int]func(Event)
	watchSeq int
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{watchers: make(map[int]func(Event))}
}

// Watch registers fn to be called after every committed mutation.
// The returned cancel function removes the watcher.
func (s *Store) Watch(fn func(Event)) (cancel func()) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	id := s.watchSeq
	s.watchSeq++
	s.watchers[id] = fn
	return func() {
		s.watchMu.Lock()
		defer s.watchMu.Unlock()
		delete(s.watchers, id)
	}
}

// publish delivers events to all watchers outside the state lock. A watcher
// that panics is logged and dropped from the delivery; it cannot corrupt the
// store or abort the caller's mutation.
func (s *Store) publish(events ...Event) {
	s.watchMu.Lock()
	fns := make([]func(Event), 0, len(s.watchers))
	for _, fn := range s.watchers {
		fns = append(fns, fn)
	}
	s.watchMu.Unlock()

	for _, ev := range events {
		for _, fn := range fns {
			func() {
				defer func() {
					if r := recover(); r != nil {
						slog.Error("workflow watcher panicked", "event", ev.Type, "panic", r)
					}
				}()
				fn(ev)
			}()
		}
	}
}

// AddNode appends node with a cascaded canvas position so sequentially added
// nodes do not stack: offset (100+20n, 100+20n) where n is the current count.
func (s *Store) AddNode(node *Node) {
	if node == nil {
		return
	}
	s.mu.Lock()
	offset := float64(len(s.nodes)) * 20
	node.Position = Position{X: 100 + offset, Y: 100 + offset}
	s.nodes = append(s.nodes, node)
	s.mu.Unlock()

	s.publish(Event{Type: EventNodeAdded, NodeID: node.ID})
}

// DeleteNode removes the node with the given ID and, in the same transition,
// every edge touching it. Deleting an absent ID is a no-op, not an error.
func (s *Store) DeleteNode(id string) {
	s.mu.Lock()
	idx := s.indexOfLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.nodes = append(s.nodes[:idx], s.nodes[idx+1:]...)

	var removed []string
	kept := s.edges[:0]
	for _, e := range s.edges {
		if e.Source == id || e.Target == id {
			removed = append(removed, e.ID)
			continue
		}
		kept = append(kept, e)
	}
	s.edges = kept
	if s.selected == id {
		s.selected = ""
	}
	s.mu.Unlock()

	events := []Event{{Type: EventNodeRemoved, NodeID: id}}
	for _, eid := range removed {
		events = append(events, Event{Type: EventEdgeRemoved, EdgeID: eid})
	}
	s.publish(events...)
}

// Connect appends a directed edge source → target and returns it.
//
// Deliberately permissive: duplicate edges, self-loops and cycles are all
// accepted, and neither endpoint is required to exist. Downstream consumers
// (connection queries, propagation) tolerate stale references instead.
func (s *Store) Connect(source, target string) Edge {
	s.mu.Lock()
	s.edgeSeq++
	edge := Edge{
		ID:     fmt.Sprintf("edge-%d", s.edgeSeq),
		Source: source,
		Target: target,
	}
	s.edges = append(s.edges, edge)
	s.mu.Unlock()

	s.publish(Event{Type: EventEdgeAdded, EdgeID: edge.ID})
	return edge
}

// Disconnect removes the edge with the given ID. No-op if absent.
func (s *Store) Disconnect(edgeID string) {
	s.mu.Lock()
	found := false
	kept := s.edges[:0]
	for _, e := range s.edges {
		if e.ID == edgeID && !found {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	s.edges = kept
	s.mu.Unlock()

	if found {
		s.publish(Event{Type: EventEdgeRemoved, EdgeID: edgeID})
	}
}

// NodeChange is a canvas-originated positional or selection delta.
type NodeChange struct {
	ID       string    `json:"id"`
	Position *Position `json:"position,omitempty"`
	Selected *bool     `json:"selected,omitempty"`
	Remove   bool      `json:"remove,omitempty"`
}

// EdgeChange is a canvas-originated edge delta.
type EdgeChange struct {
	ID     string `json:"id"`
	Remove bool   `json:"remove,omitempty"`
}

// ApplyNodeChanges batch-applies drag/select deltas without touching business
// fields. Removals cascade through DeleteNode semantics.
func (s *Store) ApplyNodeChanges(changes []NodeChange) {
	var events []Event
	var removals []string

	s.mu.Lock()
	for _, ch := range changes {
		if ch.Remove {
			removals = append(removals, ch.ID)
			continue
		}
		idx := s.indexOfLocked(ch.ID)
		if idx < 0 {
			continue
		}
		n := s.nodes[idx]
		if ch.Position != nil {
			n.Position = *ch.Position
		}
		if ch.Selected != nil {
			n.Selected = *ch.Selected
		}
		events = append(events, Event{Type: EventNodeUpdated, NodeID: ch.ID})
	}
	s.mu.Unlock()

	s.publish(events...)
	for _, id := range removals {
		s.DeleteNode(id)
	}
}

// ApplyEdgeChanges batch-applies canvas edge deltas.
func (s *Store) ApplyEdgeChanges(changes []EdgeChange) {
	for _, ch := range changes {
		if ch.Remove {
			s.Disconnect(ch.ID)
		}
	}
}

// UpdateNodeData shallow-merges patch into the node's data. No-op if the ID
// is absent.
func (s *Store) UpdateNodeData(id string, patch DataPatch) {
	s.mu.Lock()
	idx := s.indexOfLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	n := s.nodes[idx]
	if patch.Label != nil {
		n.Data.Label = *patch.Label
	}
	if patch.InputData != nil {
		n.Data.InputData = patch.InputData.Clone()
	}
	if patch.Content != nil {
		n.Data.Content = *patch.Content
	}
	if patch.Image != nil {
		n.Data.Image = *patch.Image
	}
	s.mu.Unlock()

	s.publish(Event{Type: EventNodeUpdated, NodeID: id})
}

// NodeByID returns a copy of the node, or ok=false if it does not exist.
func (s *Store) NodeByID(id string) (Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexOfLocked(id); idx >= 0 {
		return s.nodes[idx].clone(), true
	}
	return Node{}, false
}

// Nodes returns a copy of all nodes in insertion order.
func (s *Store) Nodes() []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Node, len(s.nodes))
	for i, n := range s.nodes {
		out[i] = n.clone()
	}
	return out
}

// Edges returns a copy of all edges in insertion order.
func (s *Store) Edges() []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Edge, len(s.edges))
	copy(out, s.edges)
	return out
}

// SetSelected tracks the single currently focused node. An empty ID clears
// the selection. No validation: selecting an unknown ID simply selects it.
func (s *Store) SetSelected(id string) {
	s.mu.Lock()
	s.selected = id
	s.mu.Unlock()
	s.publish(Event{Type: EventSelection, NodeID: id})
}

// Selected returns a copy of the focused node, or ok=false when nothing is
// selected or the selection points at a deleted node.
func (s *Store) Selected() (Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == "" {
		return Node{}, false
	}
	if idx := s.indexOfLocked(s.selected); idx >= 0 {
		return s.nodes[idx].clone(), true
	}
	return Node{}, false
}

// indexOfLocked returns the index of the node with the given ID, or -1.
// Caller must hold s.mu.
func (s *Store) indexOfLocked(id string) int {
	for i, n := range s.nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}
