package budget

import "time"

// Budget is a spending ceiling for one category over one date window.
// A category of "" means the budget covers all of the user's expenses.
type Budget struct {
	ID          int64
	UserID      int64
	Category    string
	Amount      float64 // always positive
	PeriodStart time.Time
	PeriodEnd   time.Time
	CreatedAt   time.Time
}

// ActiveAt reports whether the budget window contains the given date.
func (b *Budget) ActiveAt(t time.Time) bool {
	day := truncateToDay(t)
	return !day.Before(truncateToDay(b.PeriodStart)) && !day.After(truncateToDay(b.PeriodEnd))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
