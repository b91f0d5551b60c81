package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"budget_notification_engine/internal/domain/budget"
	"budget_notification_engine/internal/domain/goal"
	"budget_notification_engine/internal/domain/notification"
	"budget_notification_engine/internal/domain/transaction"

	"github.com/sirupsen/logrus"
)

// budgetWarningRatio is the fraction of a budget's limit that triggers a
// warning before the limit itself is reached.
const budgetWarningRatio = 0.8

// goalReminderWindowDays is how close a goal deadline must be before a
// reminder fires.
const goalReminderWindowDays = 7

// AlertService is the pull-based evaluator: every call re-derives alerts from
// current state, with no persisted cursor. Three independent checks run per
// user: budget limits, goal deadlines and recurring-payment due dates.
type AlertService struct {
	budgetRepo budget.Repository
	goalRepo   goal.Repository
	txRepo     transaction.Repository
	logger     *logrus.Logger
	now        func() time.Time
}

func NewAlertService(budgetRepo budget.Repository, goalRepo goal.Repository, txRepo transaction.Repository, logger *logrus.Logger) *AlertService {
	return &AlertService{
		budgetRepo: budgetRepo,
		goalRepo:   goalRepo,
		txRepo:     txRepo,
		logger:     logger,
		now:        time.Now,
	}
}

// CheckBudgetAlerts emits at most one alert per active budget: an overrun
// alert when the current month's spend has reached the limit, a warning at
// 80% of it, nothing below that.
func (s *AlertService) CheckBudgetAlerts(ctx context.Context, userID int64) ([]*notification.Alert, error) {
	now := s.now()
	budgets, err := s.budgetRepo.ListActive(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list active budgets: %w", err)
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, -1)

	var alerts []*notification.Alert
	for _, b := range budgets {
		txs, err := s.txRepo.Find(ctx, userID, transaction.Filter{
			Category: b.Category,
			Kind:     transaction.KindExpense,
			From:     monthStart,
			To:       monthEnd,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load expenses for budget %d: %w", b.ID, err)
		}

		var spent float64
		for _, tx := range txs {
			spent += tx.Amount
		}

		switch {
		case spent >= b.Amount:
			alerts = append(alerts, &notification.Alert{
				Kind:      notification.AlertBudgetExceeded,
				UserID:    userID,
				SourceID:  b.ID,
				Title:     "Budget exceeded",
				Message:   fmt.Sprintf("You have spent %.2f of your %.2f budget for %s.", spent, b.Amount, categoryLabel(b.Category)),
				Category:  b.Category,
				Limit:     b.Amount,
				Spent:     spent,
				Remaining: b.Amount - spent,
			})
		case spent >= b.Amount*budgetWarningRatio:
			alerts = append(alerts, &notification.Alert{
				Kind:      notification.AlertBudgetWarning,
				UserID:    userID,
				SourceID:  b.ID,
				Title:     "Budget warning",
				Message:   fmt.Sprintf("You have used %.0f%% of your %.2f budget for %s.", spent/b.Amount*100, b.Amount, categoryLabel(b.Category)),
				Category:  b.Category,
				Limit:     b.Amount,
				Spent:     spent,
				Remaining: b.Amount - spent,
			})
		}
	}
	return alerts, nil
}

// CheckGoalReminders emits a reminder for every goal whose deadline falls
// within the next seven days (inclusive), carrying progress and days left.
func (s *AlertService) CheckGoalReminders(ctx context.Context, userID int64) ([]*notification.Alert, error) {
	today := s.now()
	// Truncate so a goal due today at midnight still lands in the window.
	dayStart := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	goals, err := s.goalRepo.ListWithDeadlineAfter(ctx, userID, dayStart)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}

	var alerts []*notification.Alert
	for _, g := range goals {
		daysLeft := g.DaysLeft(today)
		if daysLeft < 0 || daysLeft > goalReminderWindowDays {
			continue
		}
		alerts = append(alerts, &notification.Alert{
			Kind:     notification.AlertGoalReminder,
			UserID:   userID,
			SourceID: g.ID,
			Title:    "Goal deadline approaching",
			Message:  fmt.Sprintf("%q is due in %d day(s) and is %.1f%% complete.", g.Name, daysLeft, g.Progress()),
			SortDate: g.Deadline,
			GoalName: g.Name,
			Target:   g.TargetAmount,
			Current:  g.CurrentAmount,
			Progress: g.Progress(),
			DaysLeft: daysLeft,
		})
	}
	return alerts, nil
}

// CheckRecurringReminders emits a reminder for each recurring series whose
// most recent occurrence is at least one period old. A series is the distinct
// (category, kind) pair; visiting rows individually would duplicate reminders
// when several recurring rows share a series.
func (s *AlertService) CheckRecurringReminders(ctx context.Context, userID int64) ([]*notification.Alert, error) {
	txs, err := s.txRepo.Find(ctx, userID, transaction.Filter{RecurringOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring transactions: %w", err)
	}

	type seriesKey struct {
		category string
		kind     transaction.Kind
	}
	latest := make(map[seriesKey]*transaction.Transaction)
	var order []seriesKey
	for _, tx := range txs {
		key := seriesKey{tx.Category, tx.Kind}
		cur, seen := latest[key]
		if !seen {
			order = append(order, key)
		}
		if !seen || tx.Date.After(cur.Date) {
			latest[key] = tx
		}
	}

	today := s.now()
	var alerts []*notification.Alert
	for _, key := range order {
		tx := latest[key]
		freq, ok := tx.Frequency()
		if !ok {
			continue
		}
		daysSince := wholeDaysUntil(tx.Date, today)
		if daysSince < freq.PeriodDays() {
			continue
		}
		alerts = append(alerts, &notification.Alert{
			Kind:      notification.AlertRecurringReminder,
			UserID:    userID,
			SourceID:  tx.ID,
			Title:     "Recurring payment due",
			Message:   fmt.Sprintf("Your %s %s payment of %.2f looks due (last seen %s).", freq, categoryLabel(tx.Category), tx.Amount, tx.Date.Format("2006-01-02")),
			Category:  tx.Category,
			Amount:    tx.Amount,
			Frequency: string(freq),
			LastDate:  tx.Date,
		})
	}
	return alerts, nil
}

// EvaluateAll runs the three checks and returns the combined list sorted
// ascending by deadline; alerts without one sort last.
func (s *AlertService) EvaluateAll(ctx context.Context, userID int64) ([]*notification.Alert, error) {
	budgetAlerts, err := s.CheckBudgetAlerts(ctx, userID)
	if err != nil {
		return nil, err
	}
	goalAlerts, err := s.CheckGoalReminders(ctx, userID)
	if err != nil {
		return nil, err
	}
	recurringAlerts, err := s.CheckRecurringReminders(ctx, userID)
	if err != nil {
		return nil, err
	}

	all := make([]*notification.Alert, 0, len(budgetAlerts)+len(goalAlerts)+len(recurringAlerts))
	all = append(all, budgetAlerts...)
	all = append(all, goalAlerts...)
	all = append(all, recurringAlerts...)

	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i].SortDate, all[j].SortDate
		if a.IsZero() {
			return false
		}
		if b.IsZero() {
			return true
		}
		return a.Before(b)
	})

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"alerts":  len(all),
	}).Debug("alert evaluation finished")
	return all, nil
}

func categoryLabel(category string) string {
	if category == "" {
		return "overall spending"
	}
	return category
}
