package goal

import (
	"context"
	"time"
)

// Repository defines read access to the goal store.
type Repository interface {
	// ListWithDeadlineAfter returns the user's goals whose deadline is on or
	// after the given date.
	ListWithDeadlineAfter(ctx context.Context, userID int64, after time.Time) ([]*Goal, error)
}
