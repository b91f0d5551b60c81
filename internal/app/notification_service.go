package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"time"

	"budget_notification_engine/internal/domain/mail"
	"budget_notification_engine/internal/domain/notification"
	"budget_notification_engine/internal/infra/cache"
	"budget_notification_engine/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidRetention is returned when a retention cleanup is requested
	// with a non-positive age.
	ErrInvalidRetention = errors.New("retention age must be positive days")
	// ErrUnknownPreference is returned for an unknown (type, channel) pair.
	ErrUnknownPreference = errors.New("unknown notification type or channel")
)

const emailSubjectPrefix = "Personal Finance Notification: "

var emailBodyTmpl = template.Must(template.New("notification_email").Parse(`<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="background-color: #3498db; color: white; padding: 10px 20px;">Personal Finance</h2>
    <div style="border-left: 4px solid #3498db; padding: 10px; background-color: #f9f9f9;">
      <h4>{{.Title}}</h4>
      <p>{{.Message}}</p>
      <small>{{.CreatedAt.Format "02.01.2006 15:04"}}</small>
    </div>
    <p style="font-size: 12px; color: #888;">This email was sent automatically. Notification preferences can be changed in the application settings.</p>
  </div>
</body>
</html>`))

// NotificationService is the dispatcher: it persists evaluated alerts as
// notification records, routes them through per-user channel preferences and
// manages the read/unread lifecycle. Email delivery is best-effort and never
// blocks in-app persistence.
type NotificationService struct {
	repo     notification.Repository
	alertSvc *AlertService
	mailer   mail.Sender
	prefs    *cache.Cache
	logger   *logrus.Logger
	now      func() time.Time
}

func NewNotificationService(repo notification.Repository, alertSvc *AlertService, mailer mail.Sender, prefCache *cache.Cache, logger *logrus.Logger) *NotificationService {
	return &NotificationService{
		repo:     repo,
		alertSvc: alertSvc,
		mailer:   mailer,
		prefs:    prefCache,
		logger:   logger,
		now:      time.Now,
	}
}

// DispatchAlerts evaluates the user's alert conditions and persists each as
// an unread notification, then delivers on the email channel where the user's
// preferences allow it. An alert whose source already has an unread
// notification is skipped rather than re-fired.
//
// email may be empty when the caller has no address for the user; delivery
// then degrades to app-only.
func (s *NotificationService) DispatchAlerts(ctx context.Context, userID int64, email string) ([]*notification.Notification, error) {
	alerts, err := s.alertSvc.EvaluateAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	created := make([]*notification.Notification, 0, len(alerts))
	for _, alert := range alerts {
		n, err := s.dispatchOne(ctx, alert, email)
		if err != nil {
			return created, err
		}
		if n != nil {
			created = append(created, n)
		}
	}
	return created, nil
}

func (s *NotificationService) dispatchOne(ctx context.Context, alert *notification.Alert, email string) (*notification.Notification, error) {
	notifType := alert.Kind.NotificationType()

	if alert.SourceID != 0 {
		existing, err := s.repo.FindUnreadBySource(ctx, alert.UserID, notifType, alert.SourceID)
		if err != nil {
			return nil, fmt.Errorf("failed to check for duplicate notification: %w", err)
		}
		if existing != nil {
			metrics.NotificationsDeduplicated.Inc()
			return nil, nil
		}
	}

	payload, err := json.Marshal(alert)
	if err != nil {
		return nil, fmt.Errorf("failed to encode alert payload: %w", err)
	}

	n := &notification.Notification{
		UserID:  alert.UserID,
		Title:   alert.Title,
		Message: alert.Message,
		Type:    notifType,
	}
	if alert.SourceID != 0 {
		n.SourceID.Int64, n.SourceID.Valid = alert.SourceID, true
	}
	n.Data.String, n.Data.Valid = string(payload), true

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to persist notification: %w", err)
	}
	metrics.AlertsEmitted.WithLabelValues(string(alert.Kind)).Inc()
	metrics.NotificationsCreated.Inc()

	s.deliverEmail(ctx, n, email)
	return n, nil
}

// deliverEmail sends the email copy when the user's preference for the type
// allows it. Failures are logged and swallowed: the persisted notification
// stands regardless of what happens here.
func (s *NotificationService) deliverEmail(ctx context.Context, n *notification.Notification, email string) {
	if email == "" || !s.mailer.IsConfigured() {
		return
	}

	pref, err := s.Preferences(ctx, n.UserID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", n.UserID).Warn("preference lookup failed, skipping email delivery")
		return
	}
	if !pref.Enabled(n.Type, notification.ChannelEmail) {
		return
	}

	var body bytes.Buffer
	data := struct {
		Title     string
		Message   string
		CreatedAt time.Time
	}{n.Title, n.Message, n.CreatedAt}
	if err := emailBodyTmpl.Execute(&body, data); err != nil {
		s.logger.WithError(err).Warn("failed to render notification email")
		return
	}

	if err := s.mailer.Send(email, emailSubjectPrefix+n.Title, body.String()); err != nil {
		metrics.EmailFailures.Inc()
		s.logger.WithError(err).WithFields(logrus.Fields{
			"user_id":         n.UserID,
			"notification_id": n.ID,
		}).Warn("email delivery failed")
		return
	}
	metrics.EmailsSent.Inc()
}

// List returns the user's notifications, newest first, honoring the filter.
func (s *NotificationService) List(ctx context.Context, userID int64, filter notification.ListFilter) ([]*notification.Notification, error) {
	return s.repo.List(ctx, userID, filter)
}

// CountUnread returns how many of the user's notifications are unread.
func (s *NotificationService) CountUnread(ctx context.Context, userID int64) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkAsRead flips one notification to read, scoped to the owning user. A
// notification owned by a different user yields the not-found sentinel and no
// mutation. Re-marking an already-read notification is a successful no-op.
func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID int64) error {
	return s.repo.MarkAsRead(ctx, id, userID, s.now())
}

// MarkAllAsRead marks every unread notification of the user and returns the
// count affected.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID int64) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, userID, s.now())
}

// Delete removes one notification, scoped to the owning user.
func (s *NotificationService) Delete(ctx context.Context, id, userID int64) error {
	return s.repo.Delete(ctx, id, userID)
}

// DeleteOld removes the user's notifications older than the given number of
// days and returns the count removed.
func (s *NotificationService) DeleteOld(ctx context.Context, userID int64, olderThanDays int) (int64, error) {
	if olderThanDays <= 0 {
		return 0, ErrInvalidRetention
	}
	cutoff := s.now().AddDate(0, 0, -olderThanDays)
	return s.repo.DeleteOlderThan(ctx, userID, cutoff)
}

// Preferences returns the user's delivery preferences through the injected
// read-through cache; missing rows are created with defaults by the store.
func (s *NotificationService) Preferences(ctx context.Context, userID int64) (*notification.Preference, error) {
	key := prefCacheKey(userID)
	if v, ok := s.prefs.Get(key); ok {
		metrics.PreferenceCacheHits.Inc()
		return v.(*notification.Preference), nil
	}
	metrics.PreferenceCacheMisses.Inc()

	pref, err := s.repo.GetPreference(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load notification preferences: %w", err)
	}
	s.prefs.Set(key, pref)
	return pref, nil
}

// UpdatePreference flips one (type, channel) switch and invalidates the
// cached row. The security/app pair can be stored off but stays effective.
func (s *NotificationService) UpdatePreference(ctx context.Context, userID int64, t notification.Type, c notification.Channel, on bool) (*notification.Preference, error) {
	pref, err := s.repo.GetPreference(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load notification preferences: %w", err)
	}
	if !pref.Set(t, c, on) {
		return nil, ErrUnknownPreference
	}
	if err := s.repo.UpdatePreference(ctx, pref); err != nil {
		return nil, fmt.Errorf("failed to store notification preferences: %w", err)
	}
	s.prefs.Invalidate(prefCacheKey(userID))
	return pref, nil
}

func prefCacheKey(userID int64) string {
	return fmt.Sprintf("pref:%d", userID)
}
