package journaltx

import (
	"context"

	"driver-companion/internal/domain"
)

// Repository is the journal repository bound to one transaction
type Repository interface {
	InsertEvent(ctx context.Context, e domain.WorkflowEvent) (bool, error)
	GetOrderState(ctx context.Context, orderID string) (*domain.OrderState, error)
	UpsertOrderState(ctx context.Context, st domain.OrderState) error
}

// Runner is a transaction runner
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}
