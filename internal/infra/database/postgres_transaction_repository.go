package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"budget_notification_engine/internal/domain/transaction"
)

type PostgresTransactionRepository struct {
	db *sql.DB
}

func NewPostgresTransactionRepository(db *sql.DB) *PostgresTransactionRepository {
	return &PostgresTransactionRepository{db: db}
}

const transactionColumns = `id, user_id, amount, kind, category, description, date, is_recurring, recurring_frequency, created_at`

// Find returns the user's transactions matching the filter, newest first.
func (r *PostgresTransactionRepository) Find(ctx context.Context, userID int64, filter transaction.Filter) ([]*transaction.Transaction, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1`)
	args := []interface{}{userID}

	if filter.Category != "" {
		args = append(args, filter.Category)
		fmt.Fprintf(&sb, " AND category = $%d", len(args))
	}
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		fmt.Fprintf(&sb, " AND kind = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		fmt.Fprintf(&sb, " AND date >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		fmt.Fprintf(&sb, " AND date <= $%d", len(args))
	}
	if filter.RecurringOnly {
		sb.WriteString(" AND is_recurring = TRUE")
	}
	sb.WriteString(" ORDER BY date DESC")

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// DistinctExpenseCategories lists every category with at least one expense
// record for the user, alphabetically.
func (r *PostgresTransactionRepository) DistinctExpenseCategories(ctx context.Context, userID int64) ([]string, error) {
	query := `SELECT DISTINCT category FROM transactions
	           WHERE user_id = $1 AND kind = $2 AND category <> ''
	           ORDER BY category`
	rows, err := r.db.QueryContext(ctx, query, userID, transaction.KindExpense)
	if err != nil {
		return nil, fmt.Errorf("error querying expense categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("error scanning category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}
	return categories, nil
}

func scanTransactions(rows *sql.Rows) ([]*transaction.Transaction, error) {
	txs := make([]*transaction.Transaction, 0)
	for rows.Next() {
		tx := transaction.Transaction{}
		if err := rows.Scan(
			&tx.ID, &tx.UserID, &tx.Amount, &tx.Kind, &tx.Category, &tx.Description,
			&tx.Date, &tx.IsRecurring, &tx.RecurringFrequency, &tx.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning transaction row: %w", err)
		}
		txs = append(txs, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return txs, nil
}
