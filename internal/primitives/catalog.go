// CatalogConfig is the construction input of a Machine: the machine ID, the
// restock level, and the initial set of products with their quantities.
// Validation ensures ID presence, a non-empty product list, unique codes and
// non-negative prices and quantities.

package primitives

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// StockedProduct is a product together with its initial quantity.
type StockedProduct struct {
	Code     string `json:"code" yaml:"code"`
	Name     string `json:"name" yaml:"name"`
	Price    int    `json:"price" yaml:"price"`
	Quantity int    `json:"quantity" yaml:"quantity"`
}

// Product returns the immutable catalog entry.
func (s StockedProduct) Product() Product {
	return NewProduct(s.Code, s.Name, s.Price)
}

// CatalogConfig defines the complete initial configuration of a machine.
type CatalogConfig struct {
	Version      string           `json:"version,omitempty" yaml:"version,omitempty"`
	ID           string           `json:"id" yaml:"id"`
	RestockLevel int              `json:"restockLevel,omitempty" yaml:"restockLevel,omitempty"` // 0 = DefaultRestockLevel
	Products     []StockedProduct `json:"products" yaml:"products"`
}

// ValidateMachineID rejects IDs that are empty or could escape a directory
// when used as a file name.
func ValidateMachineID(id string) error {
	if id == "" {
		return errors.New("machine ID is required")
	}
	if id == "." || strings.Contains(id, "..") || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("machine ID %q must not contain path separators or \"..\"", id)
	}
	return nil
}

// Validate validates the catalog:
// - Valid ID (see ValidateMachineID)
// - At least one product
// - Every product valid, codes unique
// - Quantities and restock level non-negative
func (c *CatalogConfig) Validate() error {
	if err := ValidateMachineID(c.ID); err != nil {
		return err
	}
	if len(c.Products) == 0 {
		return errors.New("products list is required and cannot be empty")
	}
	if c.RestockLevel < 0 {
		return fmt.Errorf("restock level must be non-negative, got %d", c.RestockLevel)
	}
	seen := make(map[string]bool, len(c.Products))
	for i, p := range c.Products {
		if err := p.Product().Validate(); err != nil {
			return fmt.Errorf("product %d: %w", i, err)
		}
		if seen[p.Code] {
			return fmt.Errorf("duplicate product code %q", p.Code)
		}
		seen[p.Code] = true
		if p.Quantity < 0 {
			return fmt.Errorf("product %q: %w", p.Code, ErrNegativeStock)
		}
	}
	return nil
}

// EffectiveRestockLevel returns RestockLevel, or DefaultRestockLevel when unset.
func (c *CatalogConfig) EffectiveRestockLevel() int {
	if c.RestockLevel == 0 {
		return DefaultRestockLevel
	}
	return c.RestockLevel
}

// FindProduct resolves a stocked product by code.
func (c *CatalogConfig) FindProduct(code string) (StockedProduct, error) {
	if code == "" {
		return StockedProduct{}, errors.New("code cannot be empty")
	}
	for _, p := range c.Products {
		if p.Code == code {
			return p, nil
		}
	}
	return StockedProduct{}, fmt.Errorf("product %q not found", code)
}

// DefaultCatalog returns the factory assortment: four drinks, five of each.
func DefaultCatalog(id string) CatalogConfig {
	return CatalogConfig{
		ID: id,
		Products: []StockedProduct{
			{Code: "A1", Name: "Coke", Price: 25, Quantity: 5},
			{Code: "A2", Name: "Pepsi", Price: 25, Quantity: 5},
			{Code: "B1", Name: "Water", Price: 15, Quantity: 5},
			{Code: "B2", Name: "Juice", Price: 30, Quantity: 5},
		},
	}
}

// ParseCatalog decodes a catalog. format is "yaml" or "json".
func ParseCatalog(data []byte, format string) (CatalogConfig, error) {
	var cfg CatalogConfig
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return CatalogConfig{}, fmt.Errorf("yaml unmarshal: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return CatalogConfig{}, fmt.Errorf("json unmarshal: %w", err)
		}
	default:
		return CatalogConfig{}, fmt.Errorf("unsupported catalog format %q", format)
	}
	if err := cfg.Validate(); err != nil {
		return CatalogConfig{}, fmt.Errorf("catalog validation: %w", err)
	}
	return cfg, nil
}

// LoadCatalogFile reads a catalog from a .yaml, .yml or .json file.
func LoadCatalogFile(path string) (CatalogConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CatalogConfig{}, fmt.Errorf("read %s: %w", path, err)
	}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	cfg, err := ParseCatalog(data, ext)
	if err != nil {
		return CatalogConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
