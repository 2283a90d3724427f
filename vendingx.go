// Package vendingx is a transactional vending machine controller. A Machine
// accepts money, sells products with change, refunds on cancel and restocks,
// moving between four modes: idle, has_money, dispensing and out_of_stock.
//
//	m, err := vendingx.NewDefault("vm-1")
//	if err != nil {
//		return err
//	}
//	if _, err := m.InsertMoney(ctx, 30); err != nil {
//		return err
//	}
//	out, err := m.SelectProduct(ctx, "A1") // dispenses Coke, out.Change == 5
//
// Every operation runs as one indivisible step; a rejected operation returns
// a domain error and leaves the machine unchanged.
package vendingx

import (
	"github.com/comalice/vendingx/internal/core"
	"github.com/comalice/vendingx/internal/primitives"
)

type (
	Machine            = core.Machine
	Option             = core.Option
	Outcome            = core.Outcome
	MachineSnapshot    = core.MachineSnapshot
	TransitionMetadata = core.TransitionMetadata
	Persister          = core.Persister
	EventPublisher     = core.EventPublisher
	Visualizer         = core.Visualizer

	OutOfStockError        = core.OutOfStockError
	InsufficientFundsError = core.InsufficientFundsError

	Product        = primitives.Product
	StockedProduct = primitives.StockedProduct
	CatalogConfig  = primitives.CatalogConfig
	CatalogBuilder = primitives.CatalogBuilder
	Mode           = primitives.Mode
	Operation      = primitives.Operation
	Event          = primitives.Event
	Transition     = primitives.Transition
)

const (
	Idle       = primitives.Idle
	HasMoney   = primitives.HasMoney
	Dispensing = primitives.Dispensing
	OutOfStock = primitives.OutOfStock

	DefaultRestockLevel = primitives.DefaultRestockLevel
)

var (
	ErrInvalidAmount       = core.ErrInvalidAmount
	ErrMachineUnavailable  = core.ErrMachineUnavailable
	ErrOperationInProgress = core.ErrOperationInProgress
	ErrNoFundsInserted     = core.ErrNoFundsInserted
	ErrUnknownProduct      = core.ErrUnknownProduct
	ErrOutOfStock          = core.ErrOutOfStock
	ErrInsufficientFunds   = core.ErrInsufficientFunds
	ErrNothingToDispense   = core.ErrNothingToDispense
	ErrNoActiveTransaction = core.ErrNoActiveTransaction
	ErrCannotCancelNow     = core.ErrCannotCancelNow
	ErrCannotRefillNow     = core.ErrCannotRefillNow

	ErrInvalidArgument = core.ErrInvalidArgument
	ErrInvalidCatalog  = core.ErrInvalidCatalog
	ErrInvalidSnapshot = core.ErrInvalidSnapshot
)

// Options
var (
	WithLogger           = core.WithLogger
	WithPersister        = core.WithPersister
	WithPublisher        = core.WithPublisher
	WithVisualizer       = core.WithVisualizer
	WithRestockLevel     = core.WithRestockLevel
	WithDeferredDispense = core.WithDeferredDispense
	WithClock            = core.WithClock
)

// Catalogs and events
var (
	NewProduct        = primitives.NewProduct
	NewCatalogBuilder = primitives.NewCatalogBuilder
	DefaultCatalog    = primitives.DefaultCatalog
	ParseCatalog      = primitives.ParseCatalog
	LoadCatalogFile   = primitives.LoadCatalogFile
	Transitions       = primitives.Transitions

	InsertMoney       = primitives.InsertMoney
	SelectProduct     = primitives.SelectProduct
	DispenseProduct   = primitives.DispenseProduct
	CancelTransaction = primitives.CancelTransaction
	RefillProducts    = primitives.RefillProducts
)

// IsDomainError reports whether err is a recoverable machine condition rather
// than caller misuse.
func IsDomainError(err error) bool {
	return core.IsDomainError(err)
}

// New creates a Machine from a catalog.
func New(catalog CatalogConfig, opts ...Option) (*Machine, error) {
	return core.NewMachine(catalog, opts...)
}

// NewDefault creates a Machine stocked with the default assortment.
func NewDefault(id string, opts ...Option) (*Machine, error) {
	return core.NewMachine(primitives.DefaultCatalog(id), opts...)
}
