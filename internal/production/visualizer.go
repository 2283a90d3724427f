package production

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/comalice/vendingx/internal/core"
	"github.com/comalice/vendingx/internal/primitives"
)

// DefaultVisualizer renders the vending mode graph.
type DefaultVisualizer struct{}

// ExportDOT generates Graphviz DOT source for the mode graph, highlighting current.
func (v *DefaultVisualizer) ExportDOT(current primitives.Mode) string {
	var buf bytes.Buffer
	buf.WriteString(`digraph VendingMachine {
  rankdir=LR;
  node [shape=box, fontsize=10, style=rounded];
  edge [fontsize=9];
`)

	for _, mode := range primitives.Modes() {
		style := ""
		if mode == current {
			style = " style=filled fillcolor=lightgreen"
		}
		fmt.Fprintf(&buf, "  %q [label=%q%s];\n", mode, mode, style)
	}
	buf.WriteString("\n")

	for _, edge := range collectEdges() {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", edge.From, edge.To, edge.Label)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// ExportJSON serializes a machine snapshot to indented JSON.
func (v *DefaultVisualizer) ExportJSON(snapshot core.MachineSnapshot) ([]byte, error) {
	return json.MarshalIndent(snapshot, "", "  ")
}

// Edge represents a mode transition edge.
type Edge struct {
	From  primitives.Mode
	To    primitives.Mode
	Label string
}

// collectEdges merges transitions sharing endpoints into one labelled edge.
func collectEdges() []Edge {
	var edges []Edge
	index := make(map[[2]primitives.Mode]int)
	for _, tr := range primitives.Transitions() {
		key := [2]primitives.Mode{tr.From, tr.To}
		if i, ok := index[key]; ok {
			edges[i].Label += " / " + string(tr.Op)
			continue
		}
		index[key] = len(edges)
		edges = append(edges, Edge{From: tr.From, To: tr.To, Label: string(tr.Op)})
	}
	return edges
}

// FormatInventory renders one "code: name - price (Stock: n)" line per product.
func FormatInventory(products []primitives.Product, stock map[string]int) string {
	var b strings.Builder
	b.WriteString("=== Vending Machine Inventory ===\n")
	for _, p := range products {
		fmt.Fprintf(&b, "%s: %s - %d (Stock: %d)\n", p.Code, p.Name, p.Price, stock[p.Code])
	}
	b.WriteString("================================\n")
	return b.String()
}
