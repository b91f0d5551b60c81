package web

import (
	"encoding/json"
	"time"

	"budget_notification_engine/internal/domain/notification"
)

// notificationView flattens the sql.Null* fields for JSON output.
type notificationView struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Type      string          `json:"type"`
	SourceID  *int64          `json:"source_id,omitempty"`
	IsRead    bool            `json:"is_read"`
	CreatedAt time.Time       `json:"created_at"`
	ReadAt    *time.Time      `json:"read_at,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

func toNotificationViews(list []*notification.Notification) []notificationView {
	views := make([]notificationView, 0, len(list))
	for _, n := range list {
		v := notificationView{
			ID:        n.ID,
			UserID:    n.UserID,
			Title:     n.Title,
			Message:   n.Message,
			Type:      string(n.Type),
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		}
		if n.SourceID.Valid {
			id := n.SourceID.Int64
			v.SourceID = &id
		}
		if n.ReadAt.Valid {
			t := n.ReadAt.Time
			v.ReadAt = &t
		}
		if n.Data.Valid {
			v.Data = json.RawMessage(n.Data.String)
		}
		views = append(views, v)
	}
	return views
}

// preferenceView reports effective channel states, so the forced security app
// channel always shows as enabled.
type preferenceView struct {
	UserID   int64                      `json:"user_id"`
	Channels map[string]map[string]bool `json:"channels"`
}

func toPreferenceView(p *notification.Preference) preferenceView {
	view := preferenceView{
		UserID:   p.UserID,
		Channels: make(map[string]map[string]bool, len(notification.AllTypes())),
	}
	for _, t := range notification.AllTypes() {
		view.Channels[string(t)] = map[string]bool{
			string(notification.ChannelApp):   p.Enabled(t, notification.ChannelApp),
			string(notification.ChannelEmail): p.Enabled(t, notification.ChannelEmail),
		}
	}
	return view
}
