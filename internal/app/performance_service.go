package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"budget_notification_engine/internal/domain/analytics"
	"budget_notification_engine/internal/domain/budget"
	"budget_notification_engine/internal/domain/transaction"

	"github.com/sirupsen/logrus"
)

// PerformanceService computes live spent/remaining/projection figures for a
// single budget window.
type PerformanceService struct {
	budgetRepo budget.Repository
	txRepo     transaction.Repository
	logger     *logrus.Logger
	now        func() time.Time
}

func NewPerformanceService(budgetRepo budget.Repository, txRepo transaction.Repository, logger *logrus.Logger) *PerformanceService {
	return &PerformanceService{
		budgetRepo: budgetRepo,
		txRepo:     txRepo,
		logger:     logger,
		now:        time.Now,
	}
}

// BudgetPerformance builds a performance snapshot for the budget identified by
// (budgetID, userID). A budget owned by another user behaves like a missing
// one: the repository's not-found sentinel propagates.
//
// Remaining is unclamped and goes negative on overrun; PercentUsed is clamped
// to 100 so displays never exceed it.
func (s *PerformanceService) BudgetPerformance(ctx context.Context, userID, budgetID int64) (*analytics.Performance, error) {
	b, err := s.budgetRepo.GetByID(ctx, budgetID, userID)
	if err != nil {
		return nil, err
	}

	txs, err := s.txRepo.Find(ctx, userID, transaction.Filter{
		Category: b.Category, // empty category budgets cover all expenses
		Kind:     transaction.KindExpense,
		From:     b.PeriodStart,
		To:       b.PeriodEnd,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses for budget %d: %w", budgetID, err)
	}

	daily := make(map[string]float64)
	for _, tx := range txs {
		daily[tx.Date.Format("2006-01-02")] += tx.Amount
	}

	days := make([]string, 0, len(daily))
	var totalSpent float64
	for day, total := range daily {
		days = append(days, day)
		totalSpent += total
	}
	sort.Strings(days)

	var dailyAverage float64
	if len(daily) > 0 {
		dailyAverage = totalSpent / float64(len(daily))
	}

	today := s.now()
	remainingDays := wholeDaysUntil(today, b.PeriodEnd)
	if remainingDays < 0 {
		remainingDays = 0
	}

	perf := &analytics.Performance{
		BudgetID:          b.ID,
		Category:          b.Category,
		TotalBudget:       b.Amount,
		TotalSpent:        totalSpent,
		Remaining:         b.Amount - totalSpent,
		PercentUsed:       percentUsed(totalSpent, b.Amount),
		DailyAverage:      dailyAverage,
		RemainingDays:     remainingDays,
		ProjectedSpending: dailyAverage * float64(remainingDays),
		AsOf:              today,
	}
	for _, day := range days {
		perf.DailySpending = append(perf.DailySpending, analytics.DayPoint{Day: day, Total: daily[day]})
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"budget_id": budgetID,
		"spent":     totalSpent,
		"remaining": perf.Remaining,
	}).Debug("budget performance computed")
	return perf, nil
}

func percentUsed(spent, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	pct := spent / limit * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// wholeDaysUntil counts whole calendar days from a to b, negative when b is past.
func wholeDaysUntil(a, b time.Time) int {
	start := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}
