// Package benchmarks provides shared helpers for benchmark tests.
package benchmarks

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/comalice/vendingx/internal/core"
	"github.com/comalice/vendingx/internal/primitives"
)

// GenCatalog creates a catalog of n products priced 10..n+9 with qty units each.
func GenCatalog(n, qty int) primitives.CatalogConfig {
	if n < 1 {
		n = 1
	}
	b := primitives.NewCatalogBuilder(fmt.Sprintf("bench_%d", n))
	for i := 0; i < n; i++ {
		b.Product(fmt.Sprintf("P%03d", i), fmt.Sprintf("Product %d", i), 10+i, qty)
	}
	return b.MustBuild()
}

// NewBenchMachine builds a Machine over GenCatalog.
func NewBenchMachine(n, qty int, opts ...core.Option) *core.Machine {
	m, err := core.NewMachine(GenCatalog(n, qty), opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// GenSnapshotYAML generates YAML bytes for a snapshot of a machine with n products.
func GenSnapshotYAML(n int) []byte {
	data, err := yaml.Marshal(NewBenchMachine(n, 5).Snapshot())
	if err != nil {
		panic(err)
	}
	return data
}
