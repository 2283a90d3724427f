package extensibility

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/comalice/vendingx/internal/core"
	"github.com/comalice/vendingx/internal/primitives"
)

// Applier applies one event. *core.Machine satisfies it.
type Applier interface {
	Apply(ctx context.Context, evt primitives.Event) (core.Outcome, error)
}

// LoggingApplier wraps an Applier and adds logging around each event.
type LoggingApplier struct {
	inner  Applier
	logger *zap.Logger
}

// NewLoggingApplier creates a new LoggingApplier wrapping the given inner applier.
func NewLoggingApplier(inner Applier, logger *zap.Logger) *LoggingApplier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingApplier{inner: inner, logger: logger}
}

// Apply logs before and after delegating to the inner applier.
func (a *LoggingApplier) Apply(ctx context.Context, evt primitives.Event) (core.Outcome, error) {
	a.logger.Debug("applying event",
		zap.String("op", string(evt.Op)),
		zap.Int("amount", evt.Amount),
		zap.String("code", evt.Code),
	)
	start := time.Now()
	out, err := a.inner.Apply(ctx, evt)
	if err != nil {
		a.logger.Info("event rejected",
			zap.String("op", string(evt.Op)),
			zap.Duration("took", time.Since(start)),
			zap.Error(err),
		)
		return out, err
	}
	a.logger.Debug("event applied",
		zap.String("op", string(evt.Op)),
		zap.String("to", string(out.To)),
		zap.Duration("took", time.Since(start)),
	)
	return out, nil
}
