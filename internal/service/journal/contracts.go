//go:generate mockgen -source=contracts.go -destination=journal_mocks_test.go -package=journal_test

package journal

import (
	"context"
	"time"

	"driver-companion/internal/ports/journaltx"
)

// TxRunner abstracts running a function within a journal transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx journaltx.Repository) error) error
}

// Purger deletes journal entries older than a cutoff.
type Purger interface {
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
