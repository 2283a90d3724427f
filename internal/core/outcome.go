package core

import (
	"github.com/google/uuid"

	"github.com/comalice/vendingx/internal/primitives"
)

// Outcome is the result of a successful operation.
type Outcome struct {
	Operation     primitives.Operation `json:"operation" yaml:"operation"`
	From          primitives.Mode      `json:"from" yaml:"from"`
	To            primitives.Mode      `json:"to" yaml:"to"`
	Balance       int                  `json:"balance" yaml:"balance"`
	Product       *primitives.Product  `json:"product,omitempty" yaml:"product,omitempty"`
	Change        int                  `json:"change,omitempty" yaml:"change,omitempty"`
	Returned      int                  `json:"returned,omitempty" yaml:"returned,omitempty"`
	TransactionID uuid.UUID            `json:"transactionID" yaml:"transactionID"`
	Message       string               `json:"message" yaml:"message"`
}

// Dispensed reports whether the outcome handed out a product.
func (o Outcome) Dispensed() bool {
	return o.Product != nil && (o.Operation == primitives.OpDispenseProduct || o.To != primitives.Dispensing)
}
