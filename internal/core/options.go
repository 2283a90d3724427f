// Options for configuring Machine instances.

package core

import (
	"time"

	"go.uber.org/zap"
)

// Option applies configuration to Machine via functional options pattern.
type Option func(*Machine)

// WithLogger configures the Machine with a zap logger. Nil is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithPersister configures the Machine with a snapshot Persister.
func WithPersister(p Persister) Option {
	return func(m *Machine) {
		m.persister = p
	}
}

// WithPublisher configures the Machine with a transition EventPublisher.
func WithPublisher(pb EventPublisher) Option {
	return func(m *Machine) {
		m.publisher = pb
	}
}

// WithVisualizer configures the Machine with a Visualizer.
func WithVisualizer(v Visualizer) Option {
	return func(m *Machine) {
		m.visualizer = v
	}
}

// WithRestockLevel overrides the catalog's refill quantity. Must be positive.
func WithRestockLevel(level int) Option {
	return func(m *Machine) {
		m.restockLevel = level
		m.restockSet = true
	}
}

// WithDeferredDispense makes SelectProduct stop in Dispensing. The sale is then
// completed by an explicit DispenseProduct call.
func WithDeferredDispense() Option {
	return func(m *Machine) {
		m.deferredDispense = true
	}
}

// WithClock replaces time.Now for snapshot and event timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		if now != nil {
			m.now = now
		}
	}
}
