package primitives

import (
	"errors"
	"fmt"
)

// Product is an immutable catalog entry. Prices are integer unit amounts.
type Product struct {
	Code  string `json:"code" yaml:"code"`
	Name  string `json:"name" yaml:"name"`
	Price int    `json:"price" yaml:"price"`
}

// NewProduct creates a Product.
func NewProduct(code, name string, price int) Product {
	return Product{Code: code, Name: name, Price: price}
}

// Validate checks code presence and price sign.
func (p Product) Validate() error {
	if p.Code == "" {
		return errors.New("product code is required")
	}
	if p.Price < 0 {
		return fmt.Errorf("product %q: price must be non-negative, got %d", p.Code, p.Price)
	}
	return nil
}

func (p Product) String() string {
	return fmt.Sprintf("%s (%s, %d)", p.Name, p.Code, p.Price)
}
