package notification

import "time"

// AlertKind identifies which condition produced an alert.
type AlertKind string

const (
	AlertBudgetExceeded    AlertKind = "budget_alert"
	AlertBudgetWarning     AlertKind = "budget_warning"
	AlertGoalReminder      AlertKind = "goal_reminder"
	AlertRecurringReminder AlertKind = "recurring_reminder"
)

// NotificationType maps an alert kind to the preference type used for routing.
func (k AlertKind) NotificationType() Type {
	switch k {
	case AlertBudgetExceeded, AlertBudgetWarning:
		return TypeBudget
	case AlertGoalReminder:
		return TypeGoal
	case AlertRecurringReminder:
		return TypeReminder
	default:
		return TypeSystem
	}
}

// Alert is one evaluated condition, not yet persisted. SortDate carries the
// deadline used for the combined ordering; only goal reminders have one, and
// a zero SortDate sorts last.
type Alert struct {
	Kind     AlertKind `json:"kind"`
	UserID   int64     `json:"user_id"`
	Title    string    `json:"title"`
	Message  string    `json:"message"`
	SourceID int64     `json:"source_id,omitempty"`
	SortDate time.Time `json:"sort_date,omitempty"`

	// Budget alert payload.
	Category  string  `json:"category,omitempty"`
	Limit     float64 `json:"limit,omitempty"`
	Spent     float64 `json:"spent,omitempty"`
	Remaining float64 `json:"remaining,omitempty"`

	// Goal reminder payload.
	GoalName string  `json:"goal_name,omitempty"`
	Target   float64 `json:"target,omitempty"`
	Current  float64 `json:"current,omitempty"`
	Progress float64 `json:"progress,omitempty"`
	DaysLeft int     `json:"days_left,omitempty"`

	// Recurring reminder payload.
	Amount    float64   `json:"amount,omitempty"`
	Frequency string    `json:"frequency,omitempty"`
	LastDate  time.Time `json:"last_date,omitempty"`
}
