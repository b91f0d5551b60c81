package transaction

import (
	"database/sql"
	"time"
)

// Kind classifies a transaction as money in, money out, or a transfer to savings.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
	KindSaving  Kind = "saving"
)

// RecurringFrequency is the declared cadence of a recurring transaction.
type RecurringFrequency string

const (
	FrequencyDaily   RecurringFrequency = "daily"
	FrequencyWeekly  RecurringFrequency = "weekly"
	FrequencyMonthly RecurringFrequency = "monthly"
	FrequencyYearly  RecurringFrequency = "yearly"
)

// PeriodDays returns the fixed reminder threshold for a frequency in days.
// The thresholds are deliberately not calendar-aware.
func (f RecurringFrequency) PeriodDays() int {
	switch f {
	case FrequencyDaily:
		return 1
	case FrequencyWeekly:
		return 7
	case FrequencyMonthly:
		return 30
	case FrequencyYearly:
		return 365
	default:
		return 0
	}
}

// Transaction represents a single income/expense/saving record.
// Immutable once created except for lifecycle fields managed outside the engine.
type Transaction struct {
	ID                 int64
	UserID             int64
	Amount             float64 // always positive; Kind carries the sign
	Kind               Kind
	Category           string
	Description        string
	Date               time.Time
	IsRecurring        bool
	RecurringFrequency sql.NullString // one of the RecurringFrequency values when valid
	CreatedAt          time.Time
}

// Frequency returns the parsed recurring frequency, or false when the
// transaction is not recurring or carries no frequency.
func (t *Transaction) Frequency() (RecurringFrequency, bool) {
	if !t.IsRecurring || !t.RecurringFrequency.Valid {
		return "", false
	}
	f := RecurringFrequency(t.RecurringFrequency.String)
	if f.PeriodDays() == 0 {
		return "", false
	}
	return f, true
}
