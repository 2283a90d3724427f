package primitives

import "fmt"

// Mode is the active state of a Machine. Exactly one is active at a time.
type Mode string

const (
	Idle       Mode = "idle"
	HasMoney   Mode = "has_money"
	Dispensing Mode = "dispensing"
	OutOfStock Mode = "out_of_stock"
)

// Modes lists every mode in declaration order.
func Modes() []Mode {
	return []Mode{Idle, HasMoney, Dispensing, OutOfStock}
}

// ParseMode converts a string back into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case Idle, HasMoney, Dispensing, OutOfStock:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Operation names one of the five mutation entry points of a Machine.
type Operation string

const (
	OpInsertMoney       Operation = "insert_money"
	OpSelectProduct     Operation = "select_product"
	OpDispenseProduct   Operation = "dispense_product"
	OpCancelTransaction Operation = "cancel_transaction"
	OpRefillProducts    Operation = "refill_products"
)

// Operations lists every operation in declaration order.
func Operations() []Operation {
	return []Operation{OpInsertMoney, OpSelectProduct, OpDispenseProduct, OpCancelTransaction, OpRefillProducts}
}

// Valid reports whether op is one of the known operations.
func (op Operation) Valid() bool {
	switch op {
	case OpInsertMoney, OpSelectProduct, OpDispenseProduct, OpCancelTransaction, OpRefillProducts:
		return true
	}
	return false
}

// Transition is one successful edge of the mode graph. From == To marks a
// self-loop (e.g. more money inserted while already holding money).
type Transition struct {
	From Mode      `json:"from" yaml:"from"`
	Op   Operation `json:"op" yaml:"op"`
	To   Mode      `json:"to" yaml:"to"`
}

// Transitions returns the successful edges of the mode graph, in table order.
// Rejected (mode, operation) pairs are not edges; they leave the mode unchanged.
func Transitions() []Transition {
	return []Transition{
		{Idle, OpInsertMoney, HasMoney},
		{Idle, OpRefillProducts, Idle},
		{HasMoney, OpInsertMoney, HasMoney},
		{HasMoney, OpSelectProduct, Dispensing},
		{HasMoney, OpCancelTransaction, Idle},
		{HasMoney, OpRefillProducts, HasMoney},
		{Dispensing, OpDispenseProduct, Idle},
		{Dispensing, OpDispenseProduct, OutOfStock},
		{OutOfStock, OpRefillProducts, Idle},
	}
}
