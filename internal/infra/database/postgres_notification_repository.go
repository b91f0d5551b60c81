package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"budget_notification_engine/internal/domain/notification"
)

var ErrNotificationNotFound = fmt.Errorf("notification not found")

type PostgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

const notificationColumns = `id, user_id, title, message, type, source_id, is_read, created_at, read_at, data`

// --- Notification methods ---

func (r *PostgresNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	query := `INSERT INTO notifications (user_id, title, message, type, source_id, is_read, data)
	           VALUES ($1, $2, $3, $4, $5, FALSE, $6)
	           RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, n.UserID, n.Title, n.Message, n.Type, n.SourceID, n.Data).
		Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating notification: %w", err)
	}
	return nil
}

func (r *PostgresNotificationRepository) FindUnreadBySource(ctx context.Context, userID int64, t notification.Type, sourceID int64) (*notification.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications
	           WHERE user_id = $1 AND type = $2 AND source_id = $3 AND is_read = FALSE
	           ORDER BY created_at DESC LIMIT 1`
	n := notification.Notification{}
	err := r.db.QueryRowContext(ctx, query, userID, t, sourceID).Scan(
		&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.SourceID,
		&n.IsRead, &n.CreatedAt, &n.ReadAt, &n.Data,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error finding unread notification by source: %w", err)
	}
	return &n, nil
}

func (r *PostgresNotificationRepository) List(ctx context.Context, userID int64, filter notification.ListFilter) ([]*notification.Notification, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`)
	args := []interface{}{userID}

	if filter.Type != "" {
		args = append(args, filter.Type)
		fmt.Fprintf(&sb, " AND type = $%d", len(args))
	}
	if filter.UnreadOnly {
		sb.WriteString(" AND is_read = FALSE")
	}
	if filter.DaysBack > 0 {
		args = append(args, filter.DaysBack)
		fmt.Fprintf(&sb, " AND created_at >= NOW() - ($%d || ' days')::interval", len(args))
	}
	sb.WriteString(" ORDER BY created_at DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("error querying notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]*notification.Notification, 0)
	for rows.Next() {
		n := notification.Notification{}
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.SourceID,
			&n.IsRead, &n.CreatedAt, &n.ReadAt, &n.Data,
		); err != nil {
			return nil, fmt.Errorf("error scanning notification row: %w", err)
		}
		notifications = append(notifications, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", err)
	}
	return notifications, nil
}

func (r *PostgresNotificationRepository) CountUnread(ctx context.Context, userID int64) (int, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`
	var count int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting unread notifications: %w", err)
	}
	return count, nil
}

func (r *PostgresNotificationRepository) MarkAsRead(ctx context.Context, id int64, userID int64, readAt time.Time) error {
	// Idempotent for the owner: re-marking a read notification succeeds and
	// keeps the original read timestamp.
	query := `UPDATE notifications SET is_read = TRUE, read_at = COALESCE(read_at, $1)
	           WHERE id = $2 AND user_id = $3`
	res, err := r.db.ExecContext(ctx, query, readAt, id, userID)
	if err != nil {
		return fmt.Errorf("error marking notification as read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking mark-as-read result: %w", err)
	}
	if affected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *PostgresNotificationRepository) MarkAllAsRead(ctx context.Context, userID int64, readAt time.Time) (int64, error) {
	query := `UPDATE notifications SET is_read = TRUE, read_at = $1
	           WHERE user_id = $2 AND is_read = FALSE`
	res, err := r.db.ExecContext(ctx, query, readAt, userID)
	if err != nil {
		return 0, fmt.Errorf("error marking all notifications as read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error checking mark-all result: %w", err)
	}
	return affected, nil
}

func (r *PostgresNotificationRepository) Delete(ctx context.Context, id int64, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("error deleting notification: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *PostgresNotificationRepository) DeleteOlderThan(ctx context.Context, userID int64, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE user_id = $1 AND created_at < $2`, userID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("error deleting old notifications: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error checking retention delete result: %w", err)
	}
	return affected, nil
}

// PurgeOlderThan is the retention sweep across all users, used by the
// scheduled cleanup job.
func (r *PostgresNotificationRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("error purging old notifications: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error checking purge result: %w", err)
	}
	return affected, nil
}

// --- Preference methods ---

const preferenceColumns = `id, user_id,
	system_app, system_email, transaction_app, transaction_email,
	budget_app, budget_email, goal_app, goal_email,
	report_app, report_email, security_app, security_email,
	reminder_app, reminder_email`

// GetPreference returns the user's preference row, inserting the defaults
// when none exists yet.
func (r *PostgresNotificationRepository) GetPreference(ctx context.Context, userID int64) (*notification.Preference, error) {
	p, err := r.getPreference(ctx, userID)
	if err == nil {
		return p, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("error getting notification preference: %w", err)
	}

	def := notification.DefaultPreference(userID)
	query := `INSERT INTO notification_preferences (user_id,
	            system_app, system_email, transaction_app, transaction_email,
	            budget_app, budget_email, goal_app, goal_email,
	            report_app, report_email, security_app, security_email,
	            reminder_app, reminder_email)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	           ON CONFLICT (user_id) DO NOTHING
	           RETURNING id`
	err = r.db.QueryRowContext(ctx, query, userID,
		def.SystemApp, def.SystemEmail, def.TransactionApp, def.TransactionEmail,
		def.BudgetApp, def.BudgetEmail, def.GoalApp, def.GoalEmail,
		def.ReportApp, def.ReportEmail, def.SecurityApp, def.SecurityEmail,
		def.ReminderApp, def.ReminderEmail,
	).Scan(&def.ID)
	if err == sql.ErrNoRows {
		// Lost a concurrent insert race; the row exists now.
		p, err = r.getPreference(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("error re-reading notification preference: %w", err)
		}
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error creating default notification preference: %w", err)
	}
	return def, nil
}

func (r *PostgresNotificationRepository) getPreference(ctx context.Context, userID int64) (*notification.Preference, error) {
	query := `SELECT ` + preferenceColumns + ` FROM notification_preferences WHERE user_id = $1`
	p := notification.Preference{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.ID, &p.UserID,
		&p.SystemApp, &p.SystemEmail, &p.TransactionApp, &p.TransactionEmail,
		&p.BudgetApp, &p.BudgetEmail, &p.GoalApp, &p.GoalEmail,
		&p.ReportApp, &p.ReportEmail, &p.SecurityApp, &p.SecurityEmail,
		&p.ReminderApp, &p.ReminderEmail,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresNotificationRepository) UpdatePreference(ctx context.Context, p *notification.Preference) error {
	query := `UPDATE notification_preferences SET
	            system_app = $1, system_email = $2,
	            transaction_app = $3, transaction_email = $4,
	            budget_app = $5, budget_email = $6,
	            goal_app = $7, goal_email = $8,
	            report_app = $9, report_email = $10,
	            security_app = $11, security_email = $12,
	            reminder_app = $13, reminder_email = $14
	           WHERE user_id = $15`
	_, err := r.db.ExecContext(ctx, query,
		p.SystemApp, p.SystemEmail, p.TransactionApp, p.TransactionEmail,
		p.BudgetApp, p.BudgetEmail, p.GoalApp, p.GoalEmail,
		p.ReportApp, p.ReportEmail, p.SecurityApp, p.SecurityEmail,
		p.ReminderApp, p.ReminderEmail, p.UserID,
	)
	if err != nil {
		return fmt.Errorf("error updating notification preference: %w", err)
	}
	return nil
}
