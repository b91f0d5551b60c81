package transaction

import (
	"context"
	"time"
)

// Filter narrows a transaction query. Zero values mean "no restriction".
type Filter struct {
	Category      string
	Kind          Kind
	From          time.Time
	To            time.Time
	RecurringOnly bool
}

// Repository defines read access to the transaction store. The engine never
// writes transactions; CRUD lives with the surrounding persistence code.
type Repository interface {
	Find(ctx context.Context, userID int64, filter Filter) ([]*Transaction, error)
	// DistinctExpenseCategories lists every category the user has expense
	// records in, for the per-category recommendation sweep.
	DistinctExpenseCategories(ctx context.Context, userID int64) ([]string, error)
}
