// Package metrics registers the engine's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AlertsEmitted counts evaluated alerts by kind.
	AlertsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_alerts_emitted_total",
		Help: "Alerts produced by the evaluator, labeled by alert kind.",
	}, []string{"kind"})

	// NotificationsCreated counts notifications persisted by the dispatcher.
	NotificationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_notifications_created_total",
		Help: "Notification records persisted for in-app delivery.",
	})

	// NotificationsDeduplicated counts alerts suppressed because an unread
	// notification for the same source already exists.
	NotificationsDeduplicated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_notifications_deduplicated_total",
		Help: "Alerts skipped by the unread-duplicate check.",
	})

	// EmailsSent counts successful email deliveries.
	EmailsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_emails_sent_total",
		Help: "Notification emails handed to the SMTP sender.",
	})

	// EmailFailures counts swallowed email delivery errors.
	EmailFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_email_failures_total",
		Help: "Email deliveries that failed and were logged.",
	})

	// PreferenceCacheHits and PreferenceCacheMisses track the read-through
	// preference cache.
	PreferenceCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_preference_cache_hits_total",
		Help: "Preference lookups served from cache.",
	})
	PreferenceCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_preference_cache_misses_total",
		Help: "Preference lookups that fell through to the store.",
	})
)
