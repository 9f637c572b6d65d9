// Package notify keeps a bounded recent-history buffer of node execution
// results, independent of the workflow graph's lifecycle.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Capacity is the maximum number of results the log retains; older entries
// are dropped as new ones arrive.
const Capacity = 10

// ProcessResult is one recorded executor outcome.
type ProcessResult struct {
	ID        string    `json:"id"`
	NodeID    string    `json:"nodeId"`
	NodeType  string    `json:"nodeType"`
	Result    string    `json:"result"`
	Timestamp time.Time `json:"timestamp"`
}

// Log is a newest-first ring of the last Capacity results.
type Log struct {
	mu      sync.Mutex
	results []ProcessResult

	now   func() time.Time
	newID func() string
}

// NewLog creates an empty Log.
func NewLog() *Log {
	return &Log{
		now: time.Now,
		// A short random token; collisions are practically impossible
		// within a ten-entry buffer.
		newID: func() string { return uuid.NewString()[:8] },
	}
}

// Add assigns an ID and timestamp to the entry, prepends it, and truncates
// the buffer to the Capacity most recent results. Returns the stored entry.
func (l *Log) Add(nodeID, nodeType, result string) ProcessResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := ProcessResult{
		ID:        l.newID(),
		NodeID:    nodeID,
		NodeType:  nodeType,
		Result:    result,
		Timestamp: l.now(),
	}
	l.results = append([]ProcessResult{entry}, l.results...)
	if len(l.results) > Capacity {
		l.results = l.results[:Capacity]
	}
	return entry
}

// Remove deletes exactly the entry with the given ID. No-op if absent.
func (l *Log) Remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, r := range l.results {
		if r.ID == id {
			l.results = append(l.results[:i], l.results[i+1:]...)
			return
		}
	}
}

// Clear empties the buffer.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.results = nil
}

// Results returns a newest-first copy of the buffer.
func (l *Log) Results() []ProcessResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ProcessResult, len(l.results))
	copy(out, l.results)
	return out
}
