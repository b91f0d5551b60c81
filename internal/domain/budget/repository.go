package budget

import (
	"context"
	"time"
)

// Repository defines read access to the budget store.
type Repository interface {
	GetByID(ctx context.Context, id int64, userID int64) (*Budget, error)
	// ListActive returns budgets whose window contains asOf, most recent first.
	ListActive(ctx context.Context, userID int64, asOf time.Time) ([]*Budget, error)
}
