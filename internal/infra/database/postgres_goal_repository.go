package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"budget_notification_engine/internal/domain/goal"
)

type PostgresGoalRepository struct {
	db *sql.DB
}

func NewPostgresGoalRepository(db *sql.DB) *PostgresGoalRepository {
	return &PostgresGoalRepository{db: db}
}

// ListWithDeadlineAfter returns the user's goals with a deadline on or after
// the given date, nearest deadline first.
func (r *PostgresGoalRepository) ListWithDeadlineAfter(ctx context.Context, userID int64, after time.Time) ([]*goal.Goal, error) {
	query := `SELECT id, user_id, name, target_amount, current_amount, deadline, priority, created_at
	           FROM goals
	           WHERE user_id = $1 AND deadline >= $2
	           ORDER BY deadline ASC`
	rows, err := r.db.QueryContext(ctx, query, userID, after)
	if err != nil {
		return nil, fmt.Errorf("error querying goals: %w", err)
	}
	defer rows.Close()

	goals := make([]*goal.Goal, 0)
	for rows.Next() {
		g := goal.Goal{}
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.Deadline, &g.Priority, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning goal row: %w", err)
		}
		goals = append(goals, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goal rows: %w", err)
	}
	return goals, nil
}
