package production

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/comalice/vendingx/internal/core"
	"github.com/comalice/vendingx/internal/primitives"
)

// PublishedEvent bundles an event with its transition metadata for publishing.
type PublishedEvent struct {
	Event    primitives.Event
	Metadata core.TransitionMetadata
}

// ChannelPublisher forwards events to a Go channel.
// Non-blocking publish with drop on backpressure.
type ChannelPublisher struct {
	mu     sync.Mutex
	ch     chan<- PublishedEvent
	closed bool
}

// NewChannelPublisher creates a ChannelPublisher with the given output channel.
func NewChannelPublisher(ch chan<- PublishedEvent) *ChannelPublisher {
	return &ChannelPublisher{ch: ch}
}

func (p *ChannelPublisher) Publish(ctx context.Context, event primitives.Event, metadata core.TransitionMetadata) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	select {
	case p.ch <- PublishedEvent{Event: event, Metadata: metadata}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil // Non-blocking drop
	}
}

// Close closes the output channel. Later publishes are dropped.
func (p *ChannelPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.ch)
	}
	return nil
}

// LoggingPublisher writes every transition to a zap logger.
type LoggingPublisher struct {
	logger *zap.Logger
}

// NewLoggingPublisher creates a LoggingPublisher. A nil logger is replaced by a no-op one.
func NewLoggingPublisher(logger *zap.Logger) *LoggingPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingPublisher{logger: logger.Named("transitions")}
}

func (p *LoggingPublisher) Publish(ctx context.Context, event primitives.Event, md core.TransitionMetadata) error {
	fields := []zap.Field{
		zap.String("machine_id", md.MachineID),
		zap.String("op", string(event.Op)),
		zap.String("transition", md.Transition),
		zap.Int("balance", md.Outcome.Balance),
		zap.Time("at", md.Timestamp),
	}
	if md.TransactionID != "" {
		fields = append(fields, zap.String("tx_id", md.TransactionID))
	}
	if prod := md.Outcome.Product; prod != nil {
		fields = append(fields, zap.String("product", prod.Code))
	}
	if md.Outcome.Change > 0 {
		fields = append(fields, zap.Int("change", md.Outcome.Change))
	}
	if md.Outcome.Returned > 0 {
		fields = append(fields, zap.Int("returned", md.Outcome.Returned))
	}
	p.logger.Info(md.Outcome.Message, fields...)
	return nil
}

// Close flushes the logger.
func (p *LoggingPublisher) Close() error {
	_ = p.logger.Sync()
	return nil
}
