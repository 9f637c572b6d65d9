package notify_test

import (
	"fmt"
	"testing"

	"github.com/postforge/postforge/pkg/notify"
)

func TestLog_NewestFirst(t *testing.T) {
	l := notify.NewLog()
	l.Add("n1", "Text to Text", "first")
	l.Add("n2", "Text to Image", "second")
	l.Add("n3", "Twitter", "third")

	got := l.Results()
	if len(got) != 3 {
		t.Fatalf("results = %d, want 3", len(got))
	}
	want := []string{"third", "second", "first"}
	for i := range want {
		if got[i].Result != want[i] {
			t.Errorf("result[%d] = %q, want %q", i, got[i].Result, want[i])
		}
	}
}

func TestLog_BoundedAtCapacity(t *testing.T) {
	l := notify.NewLog()
	for i := 0; i < notify.Capacity+5; i++ {
		l.Add("n", "Text to Text", fmt.Sprintf("result %d", i))
	}

	got := l.Results()
	if len(got) != notify.Capacity {
		t.Fatalf("results = %d, want %d", len(got), notify.Capacity)
	}
	// The newest survives, the oldest five are gone.
	if got[0].Result != fmt.Sprintf("result %d", notify.Capacity+4) {
		t.Errorf("newest = %q, want %q", got[0].Result, fmt.Sprintf("result %d", notify.Capacity+4))
	}
	if got[len(got)-1].Result != "result 5" {
		t.Errorf("oldest = %q, want %q", got[len(got)-1].Result, "result 5")
	}
}

func TestLog_EntryFields(t *testing.T) {
	l := notify.NewLog()
	entry := l.Add("node-42", "Text to Speech", "done")

	if entry.ID == "" {
		t.Error("entry has no ID")
	}
	if entry.NodeID != "node-42" {
		t.Errorf("nodeID = %q, want %q", entry.NodeID, "node-42")
	}
	if entry.NodeType != "Text to Speech" {
		t.Errorf("nodeType = %q, want %q", entry.NodeType, "Text to Speech")
	}
	if entry.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestLog_RemoveExactEntry(t *testing.T) {
	l := notify.NewLog()
	a := l.Add("n1", "t", "a")
	b := l.Add("n2", "t", "b")
	c := l.Add("n3", "t", "c")

	l.Remove(b.ID)
	l.Remove("no-such-id") // no-op

	got := l.Results()
	if len(got) != 2 {
		t.Fatalf("results = %d, want 2", len(got))
	}
	if got[0].ID != c.ID || got[1].ID != a.ID {
		t.Errorf("surviving = [%s %s], want [%s %s]", got[0].ID, got[1].ID, c.ID, a.ID)
	}
}

func TestLog_Clear(t *testing.T) {
	l := notify.NewLog()
	l.Add("n1", "t", "a")
	l.Add("n2", "t", "b")

	l.Clear()

	if got := len(l.Results()); got != 0 {
		t.Errorf("results after clear = %d, want 0", got)
	}
}

func TestLog_ResultsReturnsCopy(t *testing.T) {
	l := notify.NewLog()
	l.Add("n1", "t", "a")

	snap := l.Results()
	snap[0].Result = "mutated"

	if l.Results()[0].Result != "a" {
		t.Error("caller mutation leaked into the log")
	}
}
