package notification

import (
	"database/sql"
	"time"
)

// Type classifies a notification for preference routing.
type Type string

const (
	TypeSystem      Type = "SYSTEM"
	TypeTransaction Type = "TRANSACTION"
	TypeBudget      Type = "BUDGET"
	TypeGoal        Type = "GOAL"
	TypeReport      Type = "REPORT"
	TypeSecurity    Type = "SECURITY"
	TypeReminder    Type = "REMINDER"
)

// AllTypes lists every notification type, in preference-page order.
func AllTypes() []Type {
	return []Type{TypeSystem, TypeTransaction, TypeBudget, TypeGoal, TypeReport, TypeSecurity, TypeReminder}
}

// Valid reports whether t is a known notification type.
func (t Type) Valid() bool {
	switch t {
	case TypeSystem, TypeTransaction, TypeBudget, TypeGoal, TypeReport, TypeSecurity, TypeReminder:
		return true
	}
	return false
}

// Notification is a persisted in-app message for one user.
// Invariant: ReadAt is set if and only if IsRead is true.
type Notification struct {
	ID        int64
	UserID    int64
	Title     string
	Message   string
	Type      Type
	SourceID  sql.NullInt64 // related entity (budget, goal, transaction) when known
	IsRead    bool
	CreatedAt time.Time
	ReadAt    sql.NullTime
	Data      sql.NullString // JSON payload with alert details
}

// ListFilter narrows a notification listing.
type ListFilter struct {
	Type       Type // zero value: all types
	UnreadOnly bool
	DaysBack   int // 0: no age restriction
	Limit      int // 0: no limit
}
