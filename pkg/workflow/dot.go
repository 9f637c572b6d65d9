package workflow

import (
	"fmt"
	"strings"

	gographviz "github.com/awalterschulze/gographviz"
)

// ExportDOT renders the current graph as Graphviz DOT text. AI nodes carry
// their operation in a "type" attribute, social nodes their platform in a
// "platform" attribute, so an export stays inspectable with standard DOT
// tooling and round-trips through ParseDOT.
func (s *Store) ExportDOT() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "digraph workflow {\n")

	for _, n := range s.Nodes() {
		parts := []string{"kind=" + dotQuote(string(n.Kind))}
		switch n.Kind {
		case KindAI:
			parts = append(parts, "type="+dotQuote(string(n.Operation)))
		case KindSocial:
			parts = append(parts, "platform="+dotQuote(string(n.Platform)))
		}
		parts = append(parts, "label="+dotQuote(n.Data.Label))
		fmt.Fprintf(&sb, "    %s [%s]\n", dotQuote(n.ID), strings.Join(parts, " "))
	}
	for _, e := range s.Edges() {
		fmt.Fprintf(&sb, "    %s -> %s\n", dotQuote(e.Source), dotQuote(e.Target))
	}

	fmt.Fprintf(&sb, "}\n")
	return sb.String()
}

// dotQuote returns the value as a DOT-safe string, quoting if necessary.
func dotQuote(s string) string {
	needsQuote := s == "" ||
		strings.ContainsAny(s, " \t\n\\\"{}[]<>=;,-")
	if needsQuote {
		escaped := strings.ReplaceAll(s, `\`, `\\`)
		escaped = strings.ReplaceAll(escaped, `"`, `\"`)
		return `"` + escaped + `"`
	}
	return s
}

// GraphDoc is the parsed form of an exported workflow DOT file.
type GraphDoc struct {
	Name  string
	Nodes []DOTNode
	Edges []DOTEdge
}

// DOTNode is one node statement with its raw attributes.
type DOTNode struct {
	ID    string
	Attrs map[string]string
}

// DOTEdge is one directed edge statement.
type DOTEdge struct {
	From, To string
}

// ParseDOT parses an exported workflow DOT file back into its raw structure.
// Custom attributes (kind, type, platform) are not part of the Graphviz
// attribute vocabulary, so analysis goes through a permissive collector
// instead of the validating gographviz.Graph.
func ParseDOT(src string) (*GraphDoc, error) {
	ast, err := gographviz.ParseString(src)
	if err != nil {
		return nil, fmt.Errorf("dot parse error: %w", err)
	}
	c := newDOTCollector()
	if err := gographviz.Analyse(ast, c); err != nil {
		return nil, fmt.Errorf("dot analyse error: %w", err)
	}

	doc := &GraphDoc{Name: c.name}
	for _, id := range c.order {
		attrs := make(map[string]string, len(c.nodes[id]))
		for k, v := range c.nodes[id] {
			attrs[k] = v
		}
		doc.Nodes = append(doc.Nodes, DOTNode{ID: id, Attrs: attrs})
	}
	doc.Edges = append(doc.Edges, c.edges...)
	return doc, nil
}

// dotCollector implements gographviz.Interface without attribute validation.
type dotCollector struct {
	name  string
	order []string
	nodes map[string]map[string]string
	edges []DOTEdge
}

func newDOTCollector() *dotCollector {
	return &dotCollector{nodes: make(map[string]map[string]string)}
}

func (c *dotCollector) SetStrict(_ bool) error { return nil }
func (c *dotCollector) SetDir(_ bool) error    { return nil }
func (c *dotCollector) SetName(n string) error { c.name = dotUnquote(n); return nil }
func (c *dotCollector) String() string         { return c.name }

func (c *dotCollector) AddNode(_ string, name string, attrs map[string]string) error {
	id := dotUnquote(name)
	if _, ok := c.nodes[id]; !ok {
		c.order = append(c.order, id)
		c.nodes[id] = make(map[string]string, len(attrs))
	}
	for k, v := range attrs {
		c.nodes[id][k] = dotUnquote(v)
	}
	return nil
}

func (c *dotCollector) AddEdge(src, dst string, _ bool, _ map[string]string) error {
	c.edges = append(c.edges, DOTEdge{From: dotUnquote(src), To: dotUnquote(dst)})
	return nil
}

func (c *dotCollector) AddPortEdge(src, _, dst, _ string, directed bool, attrs map[string]string) error {
	return c.AddEdge(src, dst, directed, attrs)
}

func (c *dotCollector) AddAttr(_, _, _ string) error                    { return nil }
func (c *dotCollector) AddSubGraph(_, _ string, _ map[string]string) error { return nil }

// dotUnquote strips surrounding double-quotes from a DOT value.
func dotUnquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
