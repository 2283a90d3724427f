// Tests for DefaultVisualizer DOT/JSON export and inventory formatting.
package production

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/comalice/vendingx/internal/core"
	"github.com/comalice/vendingx/internal/primitives"
)

func TestDefaultVisualizer_ExportDOT(t *testing.T) {
	v := &DefaultVisualizer{}
	dot := v.ExportDOT(primitives.HasMoney)

	if !strings.HasPrefix(dot, "digraph VendingMachine {") {
		t.Error("Missing DOT header")
	}
	for _, mode := range primitives.Modes() {
		if !strings.Contains(dot, `"`+string(mode)+`" [label=`) {
			t.Errorf("Missing node for %s", mode)
		}
	}
	if !strings.Contains(dot, `"idle" -> "has_money" [label="insert_money"];`) {
		t.Error("Missing insert edge")
	}
	if !strings.Contains(dot, `"has_money" -> "has_money" [label="insert_money / refill_products"];`) {
		t.Error("Self-loop labels should be merged")
	}
	if !strings.Contains(dot, `"dispensing" -> "out_of_stock" [label="dispense_product"];`) {
		t.Error("Missing sell-out edge")
	}
	if !strings.Contains(dot, `"has_money" [label="has_money" style=filled fillcolor=lightgreen];`) {
		t.Error("Missing active mode highlight")
	}
	if strings.Count(dot, "fillcolor=lightgreen") != 1 {
		t.Error("Exactly one mode should be highlighted")
	}
	if strings.Contains(dot, `\n"`) {
		t.Error("DOT lines must not contain literal escape sequences")
	}
}

func TestDefaultVisualizer_EdgesCoverTransitions(t *testing.T) {
	pairs := map[[2]primitives.Mode]bool{}
	for _, tr := range primitives.Transitions() {
		pairs[[2]primitives.Mode{tr.From, tr.To}] = true
	}
	if got := len(collectEdges()); got != len(pairs) {
		t.Errorf("expected %d edges, got %d", len(pairs), got)
	}
}

func TestDefaultVisualizer_ExportJSON(t *testing.T) {
	m, err := core.NewMachine(primitives.DefaultCatalog("vm-json"))
	if err != nil {
		t.Fatal(err)
	}
	data, err := (&DefaultVisualizer{}).ExportJSON(m.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	var decoded core.MachineSnapshot
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.MachineID != "vm-json" || decoded.Mode != primitives.Idle {
		t.Errorf("unexpected snapshot: %+v", decoded)
	}
	if decoded.Stock["B2"] != 5 {
		t.Errorf("B2 stock: got %d, want 5", decoded.Stock["B2"])
	}
}

func TestMachine_VisualizeWithVisualizer(t *testing.T) {
	m, err := core.NewMachine(primitives.DefaultCatalog("vm-viz"), core.WithVisualizer(&DefaultVisualizer{}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(m.Visualize(), `"idle" [label="idle" style=filled`) {
		t.Error("expected idle to be highlighted")
	}

	bare, err := core.NewMachine(primitives.DefaultCatalog("vm-bare"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(bare.Visualize(), "ERROR:") {
		t.Error("expected error string without a visualizer")
	}
}

func TestFormatInventory(t *testing.T) {
	products := []primitives.Product{
		primitives.NewProduct("A1", "Coke", 25),
		primitives.NewProduct("B1", "Water", 15),
	}
	out := FormatInventory(products, map[string]int{"A1": 4, "B1": 0})

	want := []string{
		"=== Vending Machine Inventory ===",
		"A1: Coke - 25 (Stock: 4)",
		"B1: Water - 15 (Stock: 0)",
		"================================",
	}
	got := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(got), len(want), out)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, got[i], want[i])
		}
	}
}
