package publishers

import (
	"context"
	"errors"
	"fmt"
)

// Fanout publishes each event to every configured sink.
type Fanout struct {
	pubs []Publisher
	log  Logger
}

// NewFanout returns a Fanout over pubs. A Fanout with no sinks is a no-op.
func NewFanout(log Logger, pubs ...Publisher) *Fanout {
	return &Fanout{pubs: pubs, log: ensureLogger(log)}
}

// Len reports the number of sinks.
func (f *Fanout) Len() int {
	if f == nil {
		return 0
	}
	return len(f.pubs)
}

// Publish sends evt to all sinks, continuing past failures.
func (f *Fanout) Publish(ctx context.Context, evt Event) error {
	if f == nil {
		return nil
	}

	var errs []error
	for _, p := range f.pubs {
		if err := p.Publish(ctx, evt); err != nil {
			f.log.WarnObj("audit publish failed", "publisher_error", map[string]any{
				"publisher_id":   p.ID(),
				"publisher_type": p.Type(),
				"error":          err.Error(),
			})
			errs = append(errs, fmt.Errorf("publisher %s: %w", p.ID(), err))
		}
	}
	return errors.Join(errs...)
}
