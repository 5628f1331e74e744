package journal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"driver-companion/internal/apperr"
	"driver-companion/internal/domain"
	"driver-companion/internal/logx"
	"driver-companion/internal/ports/journaltx"
)

// Processor appends workflow events to the journal and keeps the per-order state current.
type Processor struct {
	repo    TxRunner
	purger  Purger
	factory *foldFactory
	logger  logx.Logger

	retention        time.Duration
	operationTimeout time.Duration
	now              func() time.Time
}

// Config tunes a Processor.
type Config struct {
	// Retention is how long events are kept by Purge. Zero keeps them forever.
	Retention        time.Duration
	OperationTimeout time.Duration
}

// NewProcessor creates a Processor. purger may be nil when retention is not needed.
func NewProcessor(repo TxRunner, purger Purger, cfg Config, logger logx.Logger) *Processor {
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Processor{
		repo:             repo,
		purger:           purger,
		factory:          newFoldFactory(),
		logger:           logger,
		retention:        cfg.Retention,
		operationTimeout: cfg.OperationTimeout,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (p *Processor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, p.operationTimeout)
}

// Handle records one event. Unknown event types are ignored and a redelivered
// event does not change the folded state twice.
func (p *Processor) Handle(ctx context.Context, e domain.WorkflowEvent) error {
	e.OrderID = strings.TrimSpace(e.OrderID)
	if e.OrderID == "" || strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("event without order or event id: %w", apperr.ErrValidation)
	}
	fold, ok := p.factory.get(e.Type)
	if !ok {
		p.logger.Debug("journal skipped unknown event type", logx.String("type", e.Type))
		return nil
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = p.now()
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	duplicate := false
	err := p.repo.WithTx(ctx, func(tx journaltx.Repository) error {
		inserted, err := tx.InsertEvent(ctx, e)
		if err != nil {
			return err
		}
		if !inserted {
			duplicate = true
			return nil
		}

		st, err := tx.GetOrderState(ctx, e.OrderID)
		if err != nil {
			return err
		}
		if st == nil {
			st = &domain.OrderState{OrderID: e.OrderID}
		}
		if st.Events > 0 && e.OccurredAt.Before(st.UpdatedAt) {
			st.Events++
			if e.Outcome == domain.OutcomeFailure {
				st.Failures++
			}
			return tx.UpsertOrderState(ctx, *st)
		}

		fold(st, e)
		st.Events++
		st.LastEvent = e.Type
		st.UpdatedAt = e.OccurredAt
		return tx.UpsertOrderState(ctx, *st)
	})
	if err != nil {
		return err
	}

	if duplicate {
		p.logger.Debug("journal skipped duplicate event", logx.EventID(e.ID))
		return nil
	}
	p.logger.Info("workflow event journaled",
		logx.String("event", e.Type),
		logx.OrderID(e.OrderID),
		logx.String("outcome", e.Outcome),
	)
	return nil
}

// Purge deletes events older than the retention window.
func (p *Processor) Purge(ctx context.Context) error {
	if p.purger == nil || p.retention <= 0 {
		return nil
	}
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	n, err := p.purger.PurgeBefore(ctx, p.now().Add(-p.retention))
	if err != nil {
		return err
	}
	if n > 0 {
		p.logger.Info("journal purged", logx.Int64("deleted", n))
	}
	return nil
}
