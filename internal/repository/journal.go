package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"driver-companion/internal/domain"
	"driver-companion/internal/ports/journaltx"
)

// JournalRepo stores workflow events and the per-order state folded from them.
type JournalRepo struct {
	db *pgxpool.Pool
}

// NewJournalRepo creates a new JournalRepo.
func NewJournalRepo(db *pgxpool.Pool) *JournalRepo {
	return &JournalRepo{db: db}
}

// WithTx opens a transaction and executes fn within it.
func (r *JournalRepo) WithTx(ctx context.Context, fn func(tx journaltx.Repository) error) (err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				panic(rbErr)
			}
			panic(p)
		}
	}()

	if err := fn(&TxRepo{tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// ListEvents returns the events of an order, oldest first.
func (r *JournalRepo) ListEvents(ctx context.Context, orderID string, limit int) ([]domain.WorkflowEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
        SELECT event_id, type, order_id, driver_id, product_id, collected, status, outcome, error_kind, occurred_at
        FROM workflow_events
        WHERE order_id = $1
        ORDER BY occurred_at ASC, id ASC
        LIMIT $2
    `, orderID, limit)
	if err != nil {
		return nil, fmt.Errorf("list events of order %q: %w", orderID, err)
	}
	defer rows.Close()

	out := make([]domain.WorkflowEvent, 0)
	for rows.Next() {
		var (
			e      domain.WorkflowEvent
			status string
		)
		if err := rows.Scan(&e.ID, &e.Type, &e.OrderID, &e.DriverID, &e.ProductID, &e.Collected,
			&status, &e.Outcome, &e.ErrorKind, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Status = domain.OrderStatus(status)
		e.OccurredAt = e.OccurredAt.UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

// PurgeBefore deletes events that occurred before cutoff.
func (r *JournalRepo) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	cmd, err := r.db.Exec(ctx, `DELETE FROM workflow_events WHERE occurred_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge events before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return cmd.RowsAffected(), nil
}

// TxRepo is the journal repository bound to a transaction.
type TxRepo struct {
	tx pgx.Tx
}

// InsertEvent stores e. It reports false when an event with the same id is already stored.
func (r *TxRepo) InsertEvent(ctx context.Context, e domain.WorkflowEvent) (bool, error) {
	ct, err := r.tx.Exec(ctx, `
        INSERT INTO workflow_events
            (event_id, type, order_id, driver_id, product_id, collected, status, outcome, error_kind, occurred_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (event_id) DO NOTHING
    `, e.ID, e.Type, e.OrderID, e.DriverID, e.ProductID, e.Collected,
		string(e.Status), e.Outcome, e.ErrorKind, e.OccurredAt)
	if err != nil {
		return false, fmt.Errorf("insert event %q: %w", e.ID, err)
	}
	return ct.RowsAffected() == 1, nil
}

// GetOrderState returns the folded state of an order, or nil when none is stored.
func (r *TxRepo) GetOrderState(ctx context.Context, orderID string) (*domain.OrderState, error) {
	row := r.tx.QueryRow(ctx, `
        SELECT order_id, driver_id, status, last_event, events, failures, updated_at
        FROM order_states
        WHERE order_id = $1
        FOR UPDATE
    `, orderID)

	var (
		st     domain.OrderState
		status string
	)
	if err := row.Scan(&st.OrderID, &st.DriverID, &status, &st.LastEvent, &st.Events, &st.Failures, &st.UpdatedAt); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get state of order %q: %w", orderID, err)
	}
	st.Status = domain.OrderStatus(status)
	st.UpdatedAt = st.UpdatedAt.UTC()
	return &st, nil
}

// UpsertOrderState stores st, replacing the previous state of the order.
func (r *TxRepo) UpsertOrderState(ctx context.Context, st domain.OrderState) error {
	_, err := r.tx.Exec(ctx, `
        INSERT INTO order_states (order_id, driver_id, status, last_event, events, failures, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (order_id) DO UPDATE SET
            driver_id  = EXCLUDED.driver_id,
            status     = EXCLUDED.status,
            last_event = EXCLUDED.last_event,
            events     = EXCLUDED.events,
            failures   = EXCLUDED.failures,
            updated_at = EXCLUDED.updated_at
    `, st.OrderID, st.DriverID, string(st.Status), st.LastEvent, st.Events, st.Failures, st.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert state of order %q: %w", st.OrderID, err)
	}
	return nil
}

// GetOrderState reads the folded state of an order outside a transaction.
func (r *JournalRepo) GetOrderState(ctx context.Context, orderID string) (*domain.OrderState, error) {
	var st *domain.OrderState
	err := r.WithTx(ctx, func(tx journaltx.Repository) error {
		var err error
		st, err = tx.GetOrderState(ctx, orderID)
		return err
	})
	return st, err
}
