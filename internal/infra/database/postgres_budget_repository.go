package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"budget_notification_engine/internal/domain/budget"
)

var ErrBudgetNotFound = fmt.Errorf("budget not found")

type PostgresBudgetRepository struct {
	db *sql.DB
}

func NewPostgresBudgetRepository(db *sql.DB) *PostgresBudgetRepository {
	return &PostgresBudgetRepository{db: db}
}

const budgetColumns = `id, user_id, category, amount, period_start, period_end, created_at`

// GetByID fetches a budget scoped to its owner. A budget belonging to a
// different user is indistinguishable from a missing one.
func (r *PostgresBudgetRepository) GetByID(ctx context.Context, id int64, userID int64) (*budget.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE id = $1 AND user_id = $2`
	b := budget.Budget{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&b.ID, &b.UserID, &b.Category, &b.Amount, &b.PeriodStart, &b.PeriodEnd, &b.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBudgetNotFound
		}
		return nil, fmt.Errorf("error getting budget by ID: %w", err)
	}
	return &b, nil
}

// ListActive returns budgets whose window contains asOf, most recent first.
func (r *PostgresBudgetRepository) ListActive(ctx context.Context, userID int64, asOf time.Time) ([]*budget.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets
	           WHERE user_id = $1 AND period_start <= $2 AND period_end >= $2
	           ORDER BY period_start DESC`
	rows, err := r.db.QueryContext(ctx, query, userID, asOf)
	if err != nil {
		return nil, fmt.Errorf("error querying active budgets: %w", err)
	}
	defer rows.Close()

	budgets := make([]*budget.Budget, 0)
	for rows.Next() {
		b := budget.Budget{}
		if err := rows.Scan(&b.ID, &b.UserID, &b.Category, &b.Amount, &b.PeriodStart, &b.PeriodEnd, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning budget row: %w", err)
		}
		budgets = append(budgets, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget rows: %w", err)
	}
	return budgets, nil
}
