package core

import (
	"context"
	"fmt"
	"time"

	"github.com/comalice/vendingx/internal/primitives"
)

// Pluggable component interfaces. Implementations live in internal/production.

type Persister interface {
	Save(ctx context.Context, snapshot MachineSnapshot) error
	Load(ctx context.Context, machineID string) (MachineSnapshot, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event primitives.Event, metadata TransitionMetadata) error
	Close() error
}

type Visualizer interface {
	ExportDOT(current primitives.Mode) string
	ExportJSON(snapshot MachineSnapshot) ([]byte, error)
}

// MachineSnapshot is the serializable point-in-time state of a Machine.
// It carries no transaction history.
type MachineSnapshot struct {
	MachineID      string                   `json:"machineID" yaml:"machineID"`
	CatalogVersion string                   `json:"catalogVersion" yaml:"catalogVersion"`
	Catalog        primitives.CatalogConfig `json:"catalog" yaml:"catalog"`
	Mode           primitives.Mode          `json:"mode" yaml:"mode"`
	Balance        int                      `json:"balance" yaml:"balance"`
	Selection      *primitives.Product      `json:"selection,omitempty" yaml:"selection,omitempty"`
	Stock          map[string]int           `json:"stock" yaml:"stock"`
	TransactionID  string                   `json:"transactionID,omitempty" yaml:"transactionID,omitempty"`
	Timestamp      time.Time                `json:"timestamp" yaml:"timestamp"`
}

// TransitionMetadata accompanies every published event.
type TransitionMetadata struct {
	MachineID     string          `json:"machineID" yaml:"machineID"`
	Transition    string          `json:"transition" yaml:"transition"`
	From          primitives.Mode `json:"from" yaml:"from"`
	To            primitives.Mode `json:"to" yaml:"to"`
	TransactionID string          `json:"transactionID,omitempty" yaml:"transactionID,omitempty"`
	Outcome       Outcome         `json:"outcome" yaml:"outcome"`
	Timestamp     time.Time       `json:"timestamp" yaml:"timestamp"`
}

// checkState verifies the machine invariants for a candidate state.
func checkState(mode primitives.Mode, balance int, selection *primitives.Product, inv *primitives.Inventory) error {
	if balance < 0 {
		return fmt.Errorf("negative balance %d", balance)
	}
	if (mode == primitives.Idle || mode == primitives.OutOfStock) && balance != 0 {
		return fmt.Errorf("balance %d in mode %s", balance, mode)
	}
	if (selection != nil) != (mode == primitives.Dispensing) {
		return fmt.Errorf("selection does not match mode %s", mode)
	}
	if (mode == primitives.OutOfStock) == inv.HasAnyStock() {
		return fmt.Errorf("mode %s does not match stock", mode)
	}
	if selection != nil {
		p, ok := inv.Product(selection.Code)
		if !ok || p != *selection {
			return fmt.Errorf("selection %q not in catalog", selection.Code)
		}
		if !inv.Available(p.Code) {
			return fmt.Errorf("selection %q has no stock", p.Code)
		}
		if balance < p.Price {
			return fmt.Errorf("balance %d below price of %q", balance, p.Code)
		}
	}
	return nil
}
