package events

import (
	"context"
	"errors"

	"github.com/hilthontt/doctrack/internal/domain"
)

// FanOut delivers each event to every publisher. One failing publisher does
// not stop the others; their errors are joined.
type FanOut struct {
	publishers []domain.DocumentEventPublisher
}

func NewFanOut(publishers ...domain.DocumentEventPublisher) *FanOut {
	f := &FanOut{}
	for _, p := range publishers {
		if p != nil {
			f.publishers = append(f.publishers, p)
		}
	}
	return f
}

var _ domain.DocumentEventPublisher = (*FanOut)(nil)

func (f *FanOut) Publish(ctx context.Context, event domain.DocumentEvent) error {
	var errs []error
	for _, p := range f.publishers {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
