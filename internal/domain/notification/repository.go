package notification

import (
	"context"
	"time"
)

// Repository defines persistence for notifications and delivery preferences.
//
// Every mutation that takes both an id and a userID is scoped to the owning
// user: a mismatch behaves exactly like a missing record. Implementations
// return their package's not-found sentinel in that case.
type Repository interface {
	// Create persists a notification and fills in ID and CreatedAt.
	Create(ctx context.Context, n *Notification) error
	// FindUnreadBySource looks up an unread notification with the same
	// (user, type, source) triple, used to suppress duplicate alerts.
	// Absence is a normal outcome and returns (nil, nil).
	FindUnreadBySource(ctx context.Context, userID int64, t Type, sourceID int64) (*Notification, error)
	List(ctx context.Context, userID int64, filter ListFilter) ([]*Notification, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
	// MarkAsRead is idempotent for the owner: an already-read notification is
	// left as is, keeping its original read timestamp.
	MarkAsRead(ctx context.Context, id int64, userID int64, readAt time.Time) error
	MarkAllAsRead(ctx context.Context, userID int64, readAt time.Time) (int64, error)
	Delete(ctx context.Context, id int64, userID int64) error
	// DeleteOlderThan removes the user's notifications created before cutoff
	// and returns how many were removed.
	DeleteOlderThan(ctx context.Context, userID int64, cutoff time.Time) (int64, error)

	// GetPreference returns the user's stored preference row, creating the
	// defaults when none exists.
	GetPreference(ctx context.Context, userID int64) (*Preference, error)
	UpdatePreference(ctx context.Context, p *Preference) error
}
