package workflow

import "log/slog"

// Propagate delivers a producer node's output to every directly connected
// consumer, one hop only. For each edge leaving sourceID, in insertion order:
//
//  1. A target that no longer exists (stale edge) is skipped silently.
//  2. The target's input slot is replaced wholesale with the payload —
//     last producer wins, no merge with any previous input.
//  3. If the target is a social node and the payload carries both a non-empty
//     "text" and a non-empty "image", the post materializes: Content and
//     Image are set together. One part alone updates only the input slot.
//
// Propagation never cascades past the direct targets; a downstream producer
// must be run explicitly to push further. If sourceID does not exist the call
// is a no-op.
//
// Each target's update (input slot plus conditional materialization) commits
// atomically: no observer can see the slot written but the content/image pair
// half-set.
func (s *Store) Propagate(sourceID string, payload Payload) {
	var events []Event

	s.mu.Lock()
	if s.indexOfLocked(sourceID) < 0 {
		s.mu.Unlock()
		return
	}
	for _, e := range s.edges {
		if e.Source != sourceID {
			continue
		}
		idx := s.indexOfLocked(e.Target)
		if idx < 0 {
			slog.Debug("skipping stale edge", "edge", e.ID, "target", e.Target)
			continue
		}
		target := s.nodes[idx]
		target.Data.InputData = payload.Clone()
		if target.Kind == KindSocial && payload.Text() != "" && payload.Image() != "" {
			target.Data.Content = payload.Text()
			target.Data.Image = payload.Image()
		}
		events = append(events, Event{Type: EventDataPropagated, NodeID: target.ID, EdgeID: e.ID})
	}
	s.mu.Unlock()

	s.publish(events...)
}
