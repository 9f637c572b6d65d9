package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/postforge/postforge/pkg/workflow"
)

func graphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph <workflow.dot>",
		Short: "Print a human-readable summary of an exported workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read file: %w", err)
			}
			doc, err := workflow.ParseDOT(string(src))
			if err != nil {
				return fmt.Errorf("parse: %w", err)
			}
			fmt.Print(renderText(doc))
			return nil
		},
	}
	return cmd
}

// renderText produces the human-readable workflow summary.
func renderText(doc *workflow.GraphDoc) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Workflow: %s  (%d nodes, %d edges)\n",
		doc.Name, len(doc.Nodes), len(doc.Edges))

	maxIDLen := 4
	for _, n := range doc.Nodes {
		if len(n.ID) > maxIDLen {
			maxIDLen = len(n.ID)
		}
	}

	fmt.Fprintf(&sb, "\nNodes:\n")
	for _, n := range doc.Nodes {
		kind := n.Attrs["kind"]
		// Skip "kind" since it is already the second column.
		var attrParts []string
		keys := make([]string, 0, len(n.Attrs))
		for k := range n.Attrs {
			if k != "kind" {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			attrParts = append(attrParts, k+"="+n.Attrs[k])
		}
		fmt.Fprintf(&sb, "  %-*s  %-8s  %s\n", maxIDLen, n.ID, kind, strings.Join(attrParts, " "))
	}

	fmt.Fprintf(&sb, "\nEdges:\n")
	maxFromLen := 4
	for _, e := range doc.Edges {
		if len(e.From) > maxFromLen {
			maxFromLen = len(e.From)
		}
	}
	for _, e := range doc.Edges {
		fmt.Fprintf(&sb, "  %-*s  →  %s\n", maxFromLen, e.From, e.To)
	}

	return sb.String()
}
