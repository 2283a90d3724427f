package core

import (
	"errors"
	"fmt"
)

// Domain errors. All are recoverable; none leave the Machine partially mutated.
var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrMachineUnavailable  = errors.New("machine is out of stock")
	ErrOperationInProgress = errors.New("dispensing in progress")
	ErrNoFundsInserted     = errors.New("insert money first")
	ErrUnknownProduct      = errors.New("unknown product code")
	ErrOutOfStock          = errors.New("product out of stock")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrNothingToDispense   = errors.New("nothing to dispense")
	ErrNoActiveTransaction = errors.New("no transaction to cancel")
	ErrCannotCancelNow     = errors.New("cannot cancel while dispensing")
	ErrCannotRefillNow     = errors.New("cannot refill while dispensing")
)

// Contract violations. These signal caller misuse, not machine conditions.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidCatalog  = errors.New("invalid catalog")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

var domainErrors = []error{
	ErrInvalidAmount,
	ErrMachineUnavailable,
	ErrOperationInProgress,
	ErrNoFundsInserted,
	ErrUnknownProduct,
	ErrOutOfStock,
	ErrInsufficientFunds,
	ErrNothingToDispense,
	ErrNoActiveTransaction,
	ErrCannotCancelNow,
	ErrCannotRefillNow,
}

// IsDomainError reports whether err belongs to the recoverable domain taxonomy.
func IsDomainError(err error) bool {
	if err == nil {
		return false
	}
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// OutOfStockError reports a known product with zero stock.
type OutOfStockError struct {
	Code string
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("product %q out of stock", e.Code)
}

func (e *OutOfStockError) Is(target error) bool {
	return target == ErrOutOfStock
}

// InsufficientFundsError reports how much more money a selection needs.
type InsufficientFundsError struct {
	Shortfall int
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: need %d more", e.Shortfall)
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}
