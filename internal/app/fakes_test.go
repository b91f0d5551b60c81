package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"budget_notification_engine/internal/domain/budget"
	"budget_notification_engine/internal/domain/goal"
	"budget_notification_engine/internal/domain/notification"
	"budget_notification_engine/internal/domain/transaction"
	idb "budget_notification_engine/internal/infra/database"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// --- transaction repository fake ---

type memTransactionRepo struct {
	txs []*transaction.Transaction
}

func (r *memTransactionRepo) Find(_ context.Context, userID int64, filter transaction.Filter) ([]*transaction.Transaction, error) {
	var out []*transaction.Transaction
	for _, tx := range r.txs {
		if tx.UserID != userID {
			continue
		}
		if filter.Category != "" && tx.Category != filter.Category {
			continue
		}
		if filter.Kind != "" && tx.Kind != filter.Kind {
			continue
		}
		if !filter.From.IsZero() && tx.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && tx.Date.After(filter.To) {
			continue
		}
		if filter.RecurringOnly && !tx.IsRecurring {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (r *memTransactionRepo) DistinctExpenseCategories(_ context.Context, userID int64) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, tx := range r.txs {
		if tx.UserID != userID || tx.Kind != transaction.KindExpense || tx.Category == "" {
			continue
		}
		if !seen[tx.Category] {
			seen[tx.Category] = true
			out = append(out, tx.Category)
		}
	}
	return out, nil
}

// --- budget repository fake ---

type memBudgetRepo struct {
	budgets []*budget.Budget
}

func (r *memBudgetRepo) GetByID(_ context.Context, id int64, userID int64) (*budget.Budget, error) {
	for _, b := range r.budgets {
		if b.ID == id && b.UserID == userID {
			return b, nil
		}
	}
	return nil, idb.ErrBudgetNotFound
}

func (r *memBudgetRepo) ListActive(_ context.Context, userID int64, asOf time.Time) ([]*budget.Budget, error) {
	var out []*budget.Budget
	for _, b := range r.budgets {
		if b.UserID == userID && b.ActiveAt(asOf) {
			out = append(out, b)
		}
	}
	return out, nil
}

// --- goal repository fake ---

type memGoalRepo struct {
	goals []*goal.Goal
}

func (r *memGoalRepo) ListWithDeadlineAfter(_ context.Context, userID int64, after time.Time) ([]*goal.Goal, error) {
	day := time.Date(after.Year(), after.Month(), after.Day(), 0, 0, 0, 0, time.UTC)
	var out []*goal.Goal
	for _, g := range r.goals {
		if g.UserID == userID && !g.Deadline.Before(day) {
			out = append(out, g)
		}
	}
	return out, nil
}

// --- notification repository fake ---

type memNotificationRepo struct {
	mu            sync.Mutex
	nextID        int64
	notifications []*notification.Notification
	preferences   map[int64]*notification.Preference
	prefLoads     int
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{preferences: make(map[int64]*notification.Preference)}
}

func (r *memNotificationRepo) Create(_ context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	n.ID = r.nextID
	n.CreatedAt = time.Now()
	copied := *n
	r.notifications = append(r.notifications, &copied)
	return nil
}

func (r *memNotificationRepo) FindUnreadBySource(_ context.Context, userID int64, t notification.Type, sourceID int64) (*notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.UserID == userID && n.Type == t && n.SourceID.Valid && n.SourceID.Int64 == sourceID && !n.IsRead {
			return n, nil
		}
	}
	return nil, nil
}

func (r *memNotificationRepo) List(_ context.Context, userID int64, filter notification.ListFilter) ([]*notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*notification.Notification
	for _, n := range r.notifications {
		if n.UserID != userID {
			continue
		}
		if filter.Type != "" && n.Type != filter.Type {
			continue
		}
		if filter.UnreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *memNotificationRepo) CountUnread(_ context.Context, userID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *memNotificationRepo) MarkAsRead(_ context.Context, id int64, userID int64, readAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id && n.UserID == userID {
			if !n.IsRead {
				n.IsRead = true
				n.ReadAt.Time, n.ReadAt.Valid = readAt, true
			}
			return nil
		}
	}
	return idb.ErrNotificationNotFound
}

func (r *memNotificationRepo) MarkAllAsRead(_ context.Context, userID int64, readAt time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt.Time, n.ReadAt.Valid = readAt, true
			count++
		}
	}
	return count, nil
}

func (r *memNotificationRepo) Delete(_ context.Context, id int64, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.notifications {
		if n.ID == id && n.UserID == userID {
			r.notifications = append(r.notifications[:i], r.notifications[i+1:]...)
			return nil
		}
	}
	return idb.ErrNotificationNotFound
}

func (r *memNotificationRepo) DeleteOlderThan(_ context.Context, userID int64, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*notification.Notification
	var removed int64
	for _, n := range r.notifications {
		if n.UserID == userID && n.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	r.notifications = kept
	return removed, nil
}

func (r *memNotificationRepo) GetPreference(_ context.Context, userID int64) (*notification.Preference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefLoads++
	if p, ok := r.preferences[userID]; ok {
		copied := *p
		return &copied, nil
	}
	p := notification.DefaultPreference(userID)
	r.preferences[userID] = p
	copied := *p
	return &copied, nil
}

func (r *memNotificationRepo) UpdatePreference(_ context.Context, p *notification.Preference) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *p
	r.preferences[p.UserID] = &copied
	return nil
}

func (r *memNotificationRepo) get(id int64) *notification.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// --- mail sender fake ---

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeMailer struct {
	mu         sync.Mutex
	configured bool
	failing    bool
	sent       []sentMail
}

func (m *fakeMailer) IsConfigured() bool { return m.configured }

func (m *fakeMailer) Send(to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: htmlBody})
	return nil
}

func (m *fakeMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}
