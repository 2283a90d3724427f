package primitives

import (
	"errors"
	"fmt"
	"sort"
)

// DefaultRestockLevel is the quantity every product is reset to on refill.
const DefaultRestockLevel = 10

var (
	ErrUnknownCode   = errors.New("unknown product code")
	ErrNoStock       = errors.New("no stock left")
	ErrNegativeStock = errors.New("quantity must be non-negative")
)

// Inventory tracks remaining stock per product code.
// The set of codes is fixed when the Inventory is created.
type Inventory struct {
	products map[string]Product
	stock    map[string]int
	codes    []string // sorted, cached
}

// NewInventory builds an Inventory from stocked products.
// Duplicate codes and negative quantities are rejected.
func NewInventory(items []StockedProduct) (*Inventory, error) {
	inv := &Inventory{
		products: make(map[string]Product, len(items)),
		stock:    make(map[string]int, len(items)),
		codes:    make([]string, 0, len(items)),
	}
	for _, it := range items {
		p := it.Product()
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, exists := inv.products[p.Code]; exists {
			return nil, fmt.Errorf("duplicate product code %q", p.Code)
		}
		if it.Quantity < 0 {
			return nil, fmt.Errorf("product %q: %w", p.Code, ErrNegativeStock)
		}
		inv.products[p.Code] = p
		inv.stock[p.Code] = it.Quantity
		inv.codes = append(inv.codes, p.Code)
	}
	sort.Strings(inv.codes)
	return inv, nil
}

// Product looks up a product by code.
func (inv *Inventory) Product(code string) (Product, bool) {
	p, ok := inv.products[code]
	return p, ok
}

// Quantity returns the remaining stock for code.
func (inv *Inventory) Quantity(code string) (int, bool) {
	q, ok := inv.stock[code]
	return q, ok
}

// Available reports whether code is known and has stock left.
func (inv *Inventory) Available(code string) bool {
	return inv.stock[code] > 0
}

// Decrement removes one unit of code.
func (inv *Inventory) Decrement(code string) error {
	q, ok := inv.stock[code]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCode, code)
	}
	if q == 0 {
		return fmt.Errorf("%w: %q", ErrNoStock, code)
	}
	inv.stock[code] = q - 1
	return nil
}

// HasAnyStock reports whether at least one product has a positive quantity.
func (inv *Inventory) HasAnyStock() bool {
	for _, q := range inv.stock {
		if q > 0 {
			return true
		}
	}
	return false
}

// Refill resets every tracked quantity to level. It does not add.
func (inv *Inventory) Refill(level int) {
	for code := range inv.stock {
		inv.stock[code] = level
	}
}

// Set overwrites the quantity of a known code. Used when restoring snapshots.
func (inv *Inventory) Set(code string, qty int) error {
	if _, ok := inv.stock[code]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCode, code)
	}
	if qty < 0 {
		return fmt.Errorf("product %q: %w", code, ErrNegativeStock)
	}
	inv.stock[code] = qty
	return nil
}

// Codes returns all product codes in sorted order.
func (inv *Inventory) Codes() []string {
	out := make([]string, len(inv.codes))
	copy(out, inv.codes)
	return out
}

// Products returns all products sorted by code.
func (inv *Inventory) Products() []Product {
	out := make([]Product, 0, len(inv.codes))
	for _, code := range inv.codes {
		out = append(out, inv.products[code])
	}
	return out
}

// Snapshot returns a copy of the stock map.
func (inv *Inventory) Snapshot() map[string]int {
	snap := make(map[string]int, len(inv.stock))
	for k, v := range inv.stock {
		snap[k] = v
	}
	return snap
}

// Clone returns a deep copy. Products are values so only the maps are copied.
func (inv *Inventory) Clone() *Inventory {
	c := &Inventory{
		products: make(map[string]Product, len(inv.products)),
		stock:    inv.Snapshot(),
		codes:    inv.Codes(),
	}
	for k, v := range inv.products {
		c.products[k] = v
	}
	return c
}
