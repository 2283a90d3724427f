package core

import (
	"fmt"
	"math"

	"github.com/comalice/vendingx/internal/primitives"
)

// view is the read-only machine data a mode decision is computed from.
type view struct {
	balance      int
	selection    *primitives.Product
	inventory    *primitives.Inventory
	restockLevel int
}

// mutation lists the field updates a decision asks the Machine to apply.
type mutation struct {
	addBalance     int
	resetBalance   bool
	selection      *primitives.Product
	clearSelection bool
	decrement      string
	refill         bool
	openTx         bool
	closeTx        bool
}

// decision is the pure result of consulting the mode handler.
// When err is set, next and mut must be ignored.
type decision struct {
	next     primitives.Mode
	mut      mutation
	product  *primitives.Product
	change   int
	returned int
	message  string
	err      error
}

func reject(err error) decision {
	return decision{err: err}
}

// acceptsAmount reports whether amount is positive and fits on top of balance.
func acceptsAmount(amount, balance int) bool {
	return amount > 0 && amount <= math.MaxInt-balance
}

// decide is the mode handler: one case per mode, each covering all five
// operations. Rejected pairs return an explicit error and never mutate.
func decide(mode primitives.Mode, evt primitives.Event, v view) decision {
	switch mode {
	case primitives.Idle:
		return decideIdle(evt, v)
	case primitives.HasMoney:
		return decideHasMoney(evt, v)
	case primitives.Dispensing:
		return decideDispensing(evt, v)
	case primitives.OutOfStock:
		return decideOutOfStock(evt, v)
	}
	return reject(fmt.Errorf("%w: unknown mode %q", ErrInvalidArgument, mode))
}

func decideIdle(evt primitives.Event, v view) decision {
	switch evt.Op {
	case primitives.OpInsertMoney:
		if !acceptsAmount(evt.Amount, v.balance) {
			return reject(ErrInvalidAmount)
		}
		return decision{
			next:    primitives.HasMoney,
			mut:     mutation{addBalance: evt.Amount, openTx: true},
			message: fmt.Sprintf("Money inserted: %d", evt.Amount),
		}
	case primitives.OpSelectProduct:
		return reject(ErrNoFundsInserted)
	case primitives.OpDispenseProduct:
		return reject(ErrNothingToDispense)
	case primitives.OpCancelTransaction:
		return reject(ErrNoActiveTransaction)
	case primitives.OpRefillProducts:
		return refill(primitives.Idle, v)
	}
	return unknownOp(evt)
}

func decideHasMoney(evt primitives.Event, v view) decision {
	switch evt.Op {
	case primitives.OpInsertMoney:
		if !acceptsAmount(evt.Amount, v.balance) {
			return reject(ErrInvalidAmount)
		}
		return decision{
			next:    primitives.HasMoney,
			mut:     mutation{addBalance: evt.Amount},
			message: fmt.Sprintf("Additional money inserted: %d. Total money: %d", evt.Amount, v.balance+evt.Amount),
		}
	case primitives.OpSelectProduct:
		return selectProduct(evt.Code, v)
	case primitives.OpDispenseProduct:
		return reject(ErrNothingToDispense)
	case primitives.OpCancelTransaction:
		return decision{
			next:     primitives.Idle,
			mut:      mutation{resetBalance: true, closeTx: true},
			returned: v.balance,
			message:  fmt.Sprintf("Transaction cancelled. Returning %d", v.balance),
		}
	case primitives.OpRefillProducts:
		return refill(primitives.HasMoney, v)
	}
	return unknownOp(evt)
}

func decideDispensing(evt primitives.Event, v view) decision {
	switch evt.Op {
	case primitives.OpInsertMoney, primitives.OpSelectProduct:
		return reject(ErrOperationInProgress)
	case primitives.OpDispenseProduct:
		return dispense(v)
	case primitives.OpCancelTransaction:
		return reject(ErrCannotCancelNow)
	case primitives.OpRefillProducts:
		return reject(ErrCannotRefillNow)
	}
	return unknownOp(evt)
}

func decideOutOfStock(evt primitives.Event, v view) decision {
	switch evt.Op {
	case primitives.OpInsertMoney, primitives.OpSelectProduct:
		return reject(ErrMachineUnavailable)
	case primitives.OpDispenseProduct:
		return reject(ErrNothingToDispense)
	case primitives.OpCancelTransaction:
		return reject(ErrNoActiveTransaction)
	case primitives.OpRefillProducts:
		return refill(primitives.Idle, v)
	}
	return unknownOp(evt)
}

// selectProduct validates a selection in HasMoney. Checks run in order:
// unknown code, empty stock, insufficient balance.
func selectProduct(code string, v view) decision {
	p, ok := v.inventory.Product(code)
	if !ok {
		return reject(fmt.Errorf("%w: %q", ErrUnknownProduct, code))
	}
	if !v.inventory.Available(code) {
		return reject(&OutOfStockError{Code: code})
	}
	if v.balance < p.Price {
		return reject(&InsufficientFundsError{Shortfall: p.Price - v.balance})
	}
	return decision{
		next:    primitives.Dispensing,
		mut:     mutation{selection: &p},
		product: &p,
		message: fmt.Sprintf("Product selected: %s", p.Name),
	}
}

func dispense(v view) decision {
	if v.selection == nil {
		return reject(ErrNothingToDispense)
	}
	p := *v.selection
	if !v.inventory.Available(p.Code) {
		return reject(&OutOfStockError{Code: p.Code})
	}
	change := v.balance - p.Price
	next := primitives.Idle
	if depletedAfter(v.inventory, p.Code) {
		next = primitives.OutOfStock
	}
	msg := fmt.Sprintf("Dispensing %s.", p.Name)
	if change > 0 {
		msg += fmt.Sprintf(" Returning change: %d.", change)
	}
	msg += fmt.Sprintf(" Please collect your %s", p.Name)
	return decision{
		next: next,
		mut: mutation{
			decrement:      p.Code,
			resetBalance:   true,
			clearSelection: true,
			closeTx:        true,
		},
		product: &p,
		change:  change,
		message: msg,
	}
}

func refill(next primitives.Mode, v view) decision {
	return decision{
		next:    next,
		mut:     mutation{refill: true},
		message: fmt.Sprintf("Products refilled to %d each", v.restockLevel),
	}
}

func unknownOp(evt primitives.Event) decision {
	return reject(fmt.Errorf("%w: unknown operation %q", ErrInvalidArgument, evt.Op))
}

// depletedAfter reports whether taking one unit of code empties the inventory.
func depletedAfter(inv *primitives.Inventory, code string) bool {
	for _, c := range inv.Codes() {
		q, _ := inv.Quantity(c)
		if c == code {
			q--
		}
		if q > 0 {
			return false
		}
	}
	return true
}
