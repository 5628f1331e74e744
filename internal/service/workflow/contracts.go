//go:generate mockgen -source=contracts.go -destination=workflow_mocks_test.go -package=workflow_test

package workflow

import (
	"context"
	"encoding/json"

	"driver-companion/internal/domain"
)

// Backend is the subset of the backend client an order session needs.
type Backend interface {
	GetOrder(ctx context.Context, orderID string) (json.RawMessage, error)
	AcceptOrder(ctx context.Context, orderID string) (domain.AcceptResult, error)
	ToggleProduct(ctx context.Context, orderID, productID string, collected bool, notes string) (domain.ToggleAck, error)
	MarkOutForDelivery(ctx context.Context, orderID string) error
	CompleteDelivery(ctx context.Context, orderID, code string) error
}

// Publisher receives workflow events.
type Publisher interface {
	Publish(ctx context.Context, e domain.WorkflowEvent) error
}
