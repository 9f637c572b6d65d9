package workflow_test

import (
	"strings"
	"testing"

	"github.com/postforge/postforge/pkg/workflow"
)

func TestExportDOT_RoundTrip(t *testing.T) {
	s := workflow.NewStore()
	s.AddNode(aiNode("txt-1", workflow.OpTextToText))
	s.AddNode(aiNode("img-1", workflow.OpTextToImage))
	s.AddNode(socialNode("tw-1", workflow.PlatformTwitter))
	s.Connect("txt-1", "img-1")
	s.Connect("img-1", "tw-1")

	dot := s.ExportDOT()
	doc, err := workflow.ParseDOT(dot)
	if err != nil {
		t.Fatalf("ParseDOT: %v", err)
	}

	if doc.Name != "workflow" {
		t.Errorf("graph name = %q, want %q", doc.Name, "workflow")
	}
	if len(doc.Nodes) != 3 {
		t.Fatalf("nodes = %d, want 3", len(doc.Nodes))
	}
	if len(doc.Edges) != 2 {
		t.Fatalf("edges = %d, want 2", len(doc.Edges))
	}

	byID := map[string]workflow.DOTNode{}
	for _, n := range doc.Nodes {
		byID[n.ID] = n
	}
	if got := byID["txt-1"].Attrs["type"]; got != "text-to-text" {
		t.Errorf("txt-1 type = %q, want %q", got, "text-to-text")
	}
	if got := byID["tw-1"].Attrs["platform"]; got != "twitter" {
		t.Errorf("tw-1 platform = %q, want %q", got, "twitter")
	}
	if got := byID["tw-1"].Attrs["kind"]; got != "social" {
		t.Errorf("tw-1 kind = %q, want %q", got, "social")
	}
	if got := byID["img-1"].Attrs["label"]; got != "Text to Image" {
		t.Errorf("img-1 label = %q, want %q", got, "Text to Image")
	}

	if doc.Edges[0].From != "txt-1" || doc.Edges[0].To != "img-1" {
		t.Errorf("edge[0] = %s→%s, want txt-1→img-1", doc.Edges[0].From, doc.Edges[0].To)
	}
}

func TestExportDOT_EmptyGraph(t *testing.T) {
	s := workflow.NewStore()
	dot := s.ExportDOT()
	if !strings.HasPrefix(dot, "digraph workflow {") {
		t.Errorf("unexpected header in %q", dot)
	}
	doc, err := workflow.ParseDOT(dot)
	if err != nil {
		t.Fatalf("ParseDOT: %v", err)
	}
	if len(doc.Nodes) != 0 || len(doc.Edges) != 0 {
		t.Errorf("empty graph parsed as %d nodes, %d edges", len(doc.Nodes), len(doc.Edges))
	}
}

func TestExportDOT_QuotesSpecialValues(t *testing.T) {
	s := workflow.NewStore()
	s.AddNode(aiNode("ai-1700000000000", workflow.OpTextToText))

	dot := s.ExportDOT()
	if !strings.Contains(dot, `"ai-1700000000000"`) {
		t.Errorf("hyphenated ID not quoted in:\n%s", dot)
	}
	if !strings.Contains(dot, `label="Text to Text"`) {
		t.Errorf("label with spaces not quoted in:\n%s", dot)
	}
}
