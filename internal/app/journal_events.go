package app

import (
	"context"
	"errors"

	"driver-companion/internal/apperr"
	"driver-companion/internal/domain"
	"driver-companion/internal/transport/kafka"
)

type eventHandler interface {
	Handle(ctx context.Context, e domain.WorkflowEvent) error
}

// makeJournalHandler adapts the journal processor to the consumer. Events the
// processor rejects as invalid are skipped instead of redelivered.
func makeJournalHandler(p eventHandler) kafka.HandleFunc {
	return func(ctx context.Context, e domain.WorkflowEvent) error {
		err := p.Handle(ctx, e)
		if errors.Is(err, apperr.ErrValidation) {
			return kafka.Permanent(err)
		}
		return err
	}
}
