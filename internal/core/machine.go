// Package core provides the runtime tier of the vending controller: the
// Machine context, the mode handler it delegates decisions to, the error
// taxonomy, and the pluggable persistence/publishing/visualization interfaces.
//
// Dependencies: internal/primitives.
package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/comalice/vendingx/internal/primitives"
)

// Machine is the transactional context of one vending machine.
// Thread-safe: all operations and accessors are serialized behind one mutex,
// so every operation is a single indivisible step for its caller.
type Machine struct {
	mu sync.Mutex

	id             string
	catalog        primitives.CatalogConfig
	catalogVersion string

	mode      primitives.Mode
	balance   int
	selection *primitives.Product
	inventory *primitives.Inventory
	txID      uuid.UUID

	restockLevel     int
	restockSet       bool
	deferredDispense bool
	now              func() time.Time

	// Snapshot ordering: seq counts committed steps under mu; saveMu orders
	// Save calls so an older snapshot never overwrites a newer one.
	seq      uint64
	saveMu   sync.Mutex
	savedSeq uint64

	// Pluggable components (nil = disabled)
	logger     *zap.Logger
	persister  Persister
	publisher  EventPublisher
	visualizer Visualizer
}

// NewMachine creates a Machine from a catalog. It starts in Idle, or in
// OutOfStock when every initial quantity is zero.
func NewMachine(catalog primitives.CatalogConfig, opts ...Option) (*Machine, error) {
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	inv, err := primitives.NewInventory(catalog.Products)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	m := &Machine{
		id:             catalog.ID,
		catalog:        catalog,
		catalogVersion: primitives.ComputeVersion(&catalog),
		mode:           primitives.Idle,
		inventory:      inv,
		restockLevel:   catalog.EffectiveRestockLevel(),
		now:            time.Now,
		logger:         zap.NewNop(),
	}

	// Apply functional options
	for _, opt := range opts {
		opt(m)
	}

	if m.restockSet && m.restockLevel < 1 {
		return nil, fmt.Errorf("%w: restock level must be positive, got %d", ErrInvalidCatalog, m.restockLevel)
	}
	if !inv.HasAnyStock() {
		m.mode = primitives.OutOfStock
	}
	m.logger = m.logger.With(zap.String("machine_id", m.id))
	return m, nil
}

//
// Operations
//

// InsertMoney adds a positive amount to the balance.
func (m *Machine) InsertMoney(ctx context.Context, amount int) (Outcome, error) {
	return m.Apply(ctx, primitives.InsertMoney(amount))
}

// SelectProduct picks a product and, unless deferred dispensing is enabled,
// dispenses it in the same step.
func (m *Machine) SelectProduct(ctx context.Context, code string) (Outcome, error) {
	return m.Apply(ctx, primitives.SelectProduct(code))
}

// DispenseProduct completes a pending sale.
func (m *Machine) DispenseProduct(ctx context.Context) (Outcome, error) {
	return m.Apply(ctx, primitives.DispenseProduct())
}

// CancelTransaction returns the whole balance and goes back to Idle.
func (m *Machine) CancelTransaction(ctx context.Context) (Outcome, error) {
	return m.Apply(ctx, primitives.CancelTransaction())
}

// RefillProducts resets every quantity to the restock level.
func (m *Machine) RefillProducts(ctx context.Context) (Outcome, error) {
	return m.Apply(ctx, primitives.RefillProducts())
}

// Apply dispatches an event to the matching operation.
func (m *Machine) Apply(ctx context.Context, evt primitives.Event) (Outcome, error) {
	if !evt.Op.Valid() {
		return Outcome{}, fmt.Errorf("%w: unknown operation %q", ErrInvalidArgument, evt.Op)
	}
	if evt.Op == primitives.OpSelectProduct && evt.Code == "" {
		return Outcome{}, fmt.Errorf("%w: empty product code", ErrInvalidArgument)
	}

	m.mu.Lock()
	out, err := m.stepLocked(evt)
	if err == nil && !m.deferredDispense && out.To == primitives.Dispensing {
		var dispensed Outcome
		dispensed, err = m.stepLocked(primitives.DispenseProduct())
		if err != nil {
			// undo the selection so the combined step stays atomic
			m.mode = out.From
			m.selection = nil
		} else {
			out = combine(out, dispensed)
		}
	}
	var snap MachineSnapshot
	var seq uint64
	if err == nil {
		m.seq++
		seq = m.seq
		if m.persister != nil {
			snap = m.snapshotLocked()
		}
	}
	m.mu.Unlock()

	if err != nil {
		m.logger.Debug("operation rejected",
			zap.String("op", string(evt.Op)),
			zap.Error(err),
		)
		return Outcome{}, err
	}

	m.logger.Info("operation applied",
		zap.String("op", string(out.Operation)),
		zap.String("from", string(out.From)),
		zap.String("to", string(out.To)),
		zap.Int("balance", out.Balance),
		zap.Stringer("tx_id", out.TransactionID),
	)
	m.afterCommit(ctx, evt, out, snap, seq)
	return out, nil
}

// stepLocked consults the mode handler and applies its decision.
// Must hold m.mu.
func (m *Machine) stepLocked(evt primitives.Event) (Outcome, error) {
	from := m.mode
	d := decide(from, evt, m.viewLocked())
	if d.err != nil {
		return Outcome{}, d.err
	}

	tx := m.txID
	if err := m.applyLocked(d); err != nil {
		return Outcome{}, err
	}
	if d.mut.openTx {
		tx = m.txID
	}

	return Outcome{
		Operation:     evt.Op,
		From:          from,
		To:            m.mode,
		Balance:       m.balance,
		Product:       d.product,
		Change:        d.change,
		Returned:      d.returned,
		TransactionID: tx,
		Message:       d.message,
	}, nil
}

// applyLocked applies a mutation. The only fallible update (decrement) runs
// first so a failure leaves the machine untouched.
func (m *Machine) applyLocked(d decision) error {
	mut := d.mut
	if mut.decrement != "" {
		if err := m.inventory.Decrement(mut.decrement); err != nil {
			return fmt.Errorf("dispense %q: %w", mut.decrement, err)
		}
	}
	m.balance += mut.addBalance
	if mut.refill {
		m.inventory.Refill(m.restockLevel)
	}
	if mut.selection != nil {
		m.selection = mut.selection
	}
	if mut.resetBalance {
		m.balance = 0
	}
	if mut.clearSelection {
		m.selection = nil
	}
	if mut.openTx {
		m.txID = uuid.New()
	}
	if mut.closeTx {
		m.txID = uuid.Nil
	}
	m.mode = d.next
	return nil
}

func (m *Machine) viewLocked() view {
	return view{
		balance:      m.balance,
		selection:    m.selection,
		inventory:    m.inventory,
		restockLevel: m.restockLevel,
	}
}

// combine merges a selection and its automatic dispense into one outcome.
func combine(selected, dispensed Outcome) Outcome {
	out := dispensed
	out.Operation = selected.Operation
	out.From = selected.From
	out.Message = selected.Message + ". " + dispensed.Message
	return out
}

// afterCommit runs the persister and publisher. Failures are logged and never
// undo the committed step.
func (m *Machine) afterCommit(ctx context.Context, evt primitives.Event, out Outcome, snap MachineSnapshot, seq uint64) {
	if m.persister != nil {
		m.save(ctx, snap, seq)
	}
	if m.publisher != nil {
		md := TransitionMetadata{
			MachineID:  m.id,
			Transition: fmt.Sprintf("%s -> %s", out.From, out.To),
			From:       out.From,
			To:         out.To,
			Outcome:    out,
			Timestamp:  m.now(),
		}
		if out.TransactionID != uuid.Nil {
			md.TransactionID = out.TransactionID.String()
		}
		if err := m.publisher.Publish(ctx, evt, md); err != nil {
			m.logger.Warn("publish failed", zap.Error(err))
		}
	}
}

// save writes snap unless a later step has already been saved.
func (m *Machine) save(ctx context.Context, snap MachineSnapshot, seq uint64) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()
	if seq <= m.savedSeq {
		m.logger.Debug("skipping stale snapshot", zap.Uint64("seq", seq), zap.Uint64("saved_seq", m.savedSeq))
		return
	}
	if err := m.persister.Save(ctx, snap); err != nil {
		m.logger.Warn("snapshot save failed", zap.Error(err))
		return
	}
	m.savedSeq = seq
}

//
// Queries
//

// ID returns the machine ID.
func (m *Machine) ID() string {
	return m.id
}

// Mode returns the active mode.
func (m *Machine) Mode() primitives.Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Balance returns the money accepted in the current transaction.
func (m *Machine) Balance() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balance
}

// Selection returns the product being dispensed, if any.
func (m *Machine) Selection() (primitives.Product, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.selection == nil {
		return primitives.Product{}, false
	}
	return *m.selection, true
}

// Stock returns the remaining quantity for code.
func (m *Machine) Stock(code string) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inventory.Quantity(code)
}

// Inventory returns a copy of all quantities.
func (m *Machine) Inventory() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inventory.Snapshot()
}

// Products returns the catalog sorted by code.
func (m *Machine) Products() []primitives.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inventory.Products()
}

// RestockLevel returns the refill quantity.
func (m *Machine) RestockLevel() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restockLevel
}

// TransactionID returns the open transaction's ID, or uuid.Nil.
func (m *Machine) TransactionID() uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.txID
}

// Snapshot returns the serializable state of the machine.
func (m *Machine) Snapshot() MachineSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Machine) snapshotLocked() MachineSnapshot {
	snap := MachineSnapshot{
		MachineID:      m.id,
		CatalogVersion: m.catalogVersion,
		Catalog:        m.catalog,
		Mode:           m.mode,
		Balance:        m.balance,
		Stock:          m.inventory.Snapshot(),
		Timestamp:      m.now(),
	}
	if m.selection != nil {
		p := *m.selection
		snap.Selection = &p
	}
	if m.txID != uuid.Nil {
		snap.TransactionID = m.txID.String()
	}
	return snap
}

//
// Persistence
//

// Restore replaces the runtime state with a snapshot. The snapshot must
// belong to this machine, only reference known products, and satisfy the
// machine invariants; otherwise nothing changes.
func (m *Machine) Restore(snapshot MachineSnapshot) error {
	if m.id != snapshot.MachineID {
		return fmt.Errorf("%w: machine ID mismatch: have %q, snapshot %q", ErrInvalidSnapshot, m.id, snapshot.MachineID)
	}
	mode, err := primitives.ParseMode(string(snapshot.Mode))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	inv := m.inventory.Clone()
	for _, code := range inv.Codes() {
		if _, ok := snapshot.Stock[code]; !ok {
			return fmt.Errorf("%w: missing stock for %q", ErrInvalidSnapshot, code)
		}
	}
	for code, qty := range snapshot.Stock {
		if err := inv.Set(code, qty); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
	}
	if err := checkState(mode, snapshot.Balance, snapshot.Selection, inv); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	var tx uuid.UUID
	if snapshot.TransactionID != "" {
		tx, err = uuid.Parse(snapshot.TransactionID)
		if err != nil {
			return fmt.Errorf("%w: transaction ID: %v", ErrInvalidSnapshot, err)
		}
	}

	m.inventory = inv
	m.mode = mode
	m.balance = snapshot.Balance
	m.selection = nil
	if snapshot.Selection != nil {
		p := *snapshot.Selection
		m.selection = &p
	}
	m.txID = tx
	if snapshot.CatalogVersion != "" && snapshot.CatalogVersion != m.catalogVersion {
		m.logger.Warn("restoring snapshot from a different catalog version",
			zap.String("have", m.catalogVersion),
			zap.String("snapshot", snapshot.CatalogVersion),
		)
	}
	return nil
}

// Resume loads the last saved snapshot from the configured Persister and
// restores it. It returns false when no Persister is configured.
func (m *Machine) Resume(ctx context.Context) (bool, error) {
	if m.persister == nil {
		return false, nil
	}
	snap, err := m.persister.Load(ctx, m.id)
	if err != nil {
		return false, fmt.Errorf("load snapshot: %w", err)
	}
	if err := m.Restore(snap); err != nil {
		return false, err
	}
	m.logger.Info("snapshot restored", zap.String("mode", string(snap.Mode)))
	return true, nil
}

// CheckInvariants verifies the machine invariants on the current state.
func (m *Machine) CheckInvariants() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return checkState(m.mode, m.balance, m.selection, m.inventory)
}

// Visualize returns the Graphviz DOT visualization of the mode graph.
func (m *Machine) Visualize() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.visualizer == nil {
		return "ERROR: No visualizer configured. Use WithVisualizer(&production.DefaultVisualizer{})"
	}
	return m.visualizer.ExportDOT(m.mode)
}

// Close releases the publisher, if any.
func (m *Machine) Close() error {
	if m.publisher != nil {
		return m.publisher.Close()
	}
	return nil
}
