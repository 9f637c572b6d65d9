package workflow

// EventType identifies a store mutation for watchers.
type EventType string

const (
	EventNodeAdded      EventType = "node_added"
	EventNodeRemoved    EventType = "node_removed"
	EventNodeUpdated    EventType = "node_updated"
	EventEdgeAdded      EventType = "edge_added"
	EventEdgeRemoved    EventType = "edge_removed"
	EventDataPropagated EventType = "data_propagated"
	EventSelection      EventType = "selection_changed"
)

// Event is published after a store mutation commits.
type Event struct {
	Type   EventType `json:"type"`
	NodeID string    `json:"node_id,omitempty"`
	EdgeID string    `json:"edge_id,omitempty"`
}
