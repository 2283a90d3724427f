// Package testutil runs the same vending test suite against a Machine driven
// directly and a Machine fed through an event source.
package testutil

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/comalice/vendingx/internal/core"
	"github.com/comalice/vendingx/internal/extensibility"
	"github.com/comalice/vendingx/internal/primitives"
)

// MachineAdapter provides a common interface for both ways of driving a Machine.
// This allows running the same test suite on both.
type MachineAdapter interface {
	Start(ctx context.Context) error
	Stop() error
	Send(evt primitives.Event) (core.Outcome, error)
	Mode() primitives.Mode
	Machine() *core.Machine
}

// DirectAdapter calls Machine.Apply on the caller's goroutine.
type DirectAdapter struct {
	m *core.Machine
}

// NewDirectAdapter creates a new adapter applying events directly.
func NewDirectAdapter(m *core.Machine) *DirectAdapter {
	return &DirectAdapter{m: m}
}

func (a *DirectAdapter) Start(ctx context.Context) error { return nil }

func (a *DirectAdapter) Stop() error { return nil }

func (a *DirectAdapter) Send(evt primitives.Event) (core.Outcome, error) {
	return a.m.Apply(context.Background(), evt)
}

func (a *DirectAdapter) Mode() primitives.Mode { return a.m.Mode() }

func (a *DirectAdapter) Machine() *core.Machine { return a.m }

type pumpResult struct {
	out core.Outcome
	err error
}

// PumpAdapter feeds events through a ChannelEventSource drained by
// extensibility.Pump on its own goroutine.
type PumpAdapter struct {
	m       *core.Machine
	src     *extensibility.ChannelEventSource
	results chan pumpResult
	done    chan error
	once    sync.Once
}

// NewPumpAdapter creates a new adapter for pump-driven machines.
func NewPumpAdapter(m *core.Machine) *PumpAdapter {
	return &PumpAdapter{
		m:       m,
		src:     extensibility.NewChannelEventSource(make(chan primitives.Event)),
		results: make(chan pumpResult, 1),
		done:    make(chan error, 1),
	}
}

func (a *PumpAdapter) Start(ctx context.Context) error {
	go func() {
		a.done <- extensibility.Pump(ctx, a.src, a.m, func(_ primitives.Event, out core.Outcome, err error) {
			a.results <- pumpResult{out, err}
		})
	}()
	return nil
}

func (a *PumpAdapter) Stop() error {
	var err error
	a.once.Do(func() {
		a.src.Close()
		err = <-a.done
	})
	return err
}

// Send blocks until the pump reports the event's result.
func (a *PumpAdapter) Send(evt primitives.Event) (core.Outcome, error) {
	a.src.Send(evt)
	r := <-a.results
	return r.out, r.err
}

func (a *PumpAdapter) Mode() primitives.Mode { return a.m.Mode() }

func (a *PumpAdapter) Machine() *core.Machine { return a.m }

// AssertInvariants fails t when m violates any machine invariant.
func AssertInvariants(t testing.TB, m *core.Machine) {
	t.Helper()
	if err := m.CheckInvariants(); err != nil {
		t.Errorf("invariant violated: %v", err)
	}
	mode, balance := m.Mode(), m.Balance()
	if (mode == primitives.Idle || mode == primitives.OutOfStock) && balance != 0 {
		t.Errorf("balance %d in mode %s", balance, mode)
	}
	empty := true
	for code, qty := range m.Inventory() {
		if qty < 0 {
			t.Errorf("negative stock %d for %s", qty, code)
		}
		if qty > 0 {
			empty = false
		}
	}
	if empty != (mode == primitives.OutOfStock) {
		t.Errorf("mode %s with empty=%v inventory", mode, empty)
	}
}

// RequireDomainError fails t unless err is a domain error matching target.
func RequireDomainError(t testing.TB, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
	if !core.IsDomainError(err) {
		t.Fatalf("%v is not a domain error", err)
	}
}
