package extensibility

import (
	"context"

	"github.com/comalice/vendingx/internal/core"
	"github.com/comalice/vendingx/internal/primitives"
)

// ResultFunc receives the result of every pumped event.
type ResultFunc func(evt primitives.Event, out core.Outcome, err error)

// Pump applies every event from src in order until the source closes or ctx
// is done. Domain errors go to onResult and pumping continues; any other
// error is reported and returned.
func Pump(ctx context.Context, src EventSource, target Applier, onResult ResultFunc) error {
	events := src.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			out, err := target.Apply(ctx, evt)
			if onResult != nil {
				onResult(evt, out, err)
			}
			if err != nil && !core.IsDomainError(err) {
				return err
			}
		}
	}
}
