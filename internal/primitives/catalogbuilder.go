package primitives

// CatalogBuilder builds a CatalogConfig fluently.
//
//	cfg, err := NewCatalogBuilder("vm-1").
//		Product("A1", "Coke", 25, 5).
//		Product("B1", "Water", 15, 5).
//		RestockLevel(10).
//		Build()
type CatalogBuilder struct {
	config CatalogConfig
}

// NewCatalogBuilder creates a new CatalogBuilder.
func NewCatalogBuilder(id string) *CatalogBuilder {
	return &CatalogBuilder{config: CatalogConfig{ID: id}}
}

// Product appends a product with its initial quantity.
func (b *CatalogBuilder) Product(code, name string, price, qty int) *CatalogBuilder {
	b.config.Products = append(b.config.Products, StockedProduct{
		Code:     code,
		Name:     name,
		Price:    price,
		Quantity: qty,
	})
	return b
}

// RestockLevel sets the refill quantity.
func (b *CatalogBuilder) RestockLevel(level int) *CatalogBuilder {
	b.config.RestockLevel = level
	return b
}

// Version pins the catalog version instead of a computed one.
func (b *CatalogBuilder) Version(v string) *CatalogBuilder {
	b.config.Version = v
	return b
}

// Build validates and returns the config.
func (b *CatalogBuilder) Build() (CatalogConfig, error) {
	cfg := b.config
	cfg.Products = append([]StockedProduct(nil), b.config.Products...)
	if err := cfg.Validate(); err != nil {
		return CatalogConfig{}, err
	}
	return cfg, nil
}

// MustBuild is like Build but panics on an invalid catalog.
func (b *CatalogBuilder) MustBuild() CatalogConfig {
	cfg, err := b.Build()
	if err != nil {
		panic(err)
	}
	return cfg
}
