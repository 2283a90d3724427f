package primitives

// Event is the immutable record of one requested operation.
//
// Events are value types. Once created they should not be mutated; use the
// constructors below. Amount is only meaningful for OpInsertMoney and Code only
// for OpSelectProduct.
//
// Example:
//
//	evt := InsertMoney(25)
//	out, err := machine.Apply(ctx, evt)
type Event struct {
	Op     Operation `json:"op" yaml:"op"`
	Amount int       `json:"amount,omitempty" yaml:"amount,omitempty"`
	Code   string    `json:"code,omitempty" yaml:"code,omitempty"`
}

// NewEvent creates an Event for op with optional amount and code.
func NewEvent(op Operation, amount int, code string) Event {
	return Event{Op: op, Amount: amount, Code: code}
}

func InsertMoney(amount int) Event { return Event{Op: OpInsertMoney, Amount: amount} }

func SelectProduct(code string) Event { return Event{Op: OpSelectProduct, Code: code} }

func DispenseProduct() Event { return Event{Op: OpDispenseProduct} }

func CancelTransaction() Event { return Event{Op: OpCancelTransaction} }

func RefillProducts() Event { return Event{Op: OpRefillProducts} }
