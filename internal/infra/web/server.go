// Package web exposes the engine's operations over a thin JSON API. The
// engine itself owns no transport; these handlers only parse, delegate and
// translate sentinel errors into status codes.
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"budget_notification_engine/internal/app"
	"budget_notification_engine/internal/domain/notification"
	idb "budget_notification_engine/internal/infra/database"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type Server struct {
	analytics     *app.AnalyticsService
	performance   *app.PerformanceService
	notifications *app.NotificationService
	logger        *logrus.Logger
}

func NewServer(analytics *app.AnalyticsService, performance *app.PerformanceService, notifications *app.NotificationService, logger *logrus.Logger) *Server {
	return &Server{
		analytics:     analytics,
		performance:   performance,
		notifications: notifications,
		logger:        logger,
	}
}

// Router builds the full route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestLogging)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/users/{userID:[0-9]+}").Subrouter()
	api.HandleFunc("/analysis/{category}", s.handleAnalysis).Methods(http.MethodGet)
	api.HandleFunc("/recommendations", s.handleRecommendations).Methods(http.MethodGet)
	api.HandleFunc("/budget/optimize", s.handleOptimize).Methods(http.MethodGet)
	api.HandleFunc("/budgets/{budgetID:[0-9]+}/performance", s.handlePerformance).Methods(http.MethodGet)
	api.HandleFunc("/alerts/run", s.handleDispatchAlerts).Methods(http.MethodPost)
	api.HandleFunc("/notifications", s.handleListNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/unread_count", s.handleUnreadCount).Methods(http.MethodGet)
	api.HandleFunc("/notifications/read_all", s.handleMarkAllRead).Methods(http.MethodPost)
	api.HandleFunc("/notifications/{id:[0-9]+}/read", s.handleMarkRead).Methods(http.MethodPost)
	api.HandleFunc("/notifications/{id:[0-9]+}", s.handleDeleteNotification).Methods(http.MethodDelete)
	api.HandleFunc("/notifications/old", s.handleDeleteOld).Methods(http.MethodDelete)
	api.HandleFunc("/notification-preferences", s.handleGetPreferences).Methods(http.MethodGet)
	api.HandleFunc("/notification-preferences", s.handleUpdatePreference).Methods(http.MethodPut)

	return r
}

func (s *Server) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.WithFields(logrus.Fields{
			"request_id": uuid.NewString(),
			"method":     r.Method,
			"path":       r.URL.Path,
		}).Debug("http request")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(w, r, "userID")
	if !ok {
		return
	}
	months, ok := queryInt(w, r, "months", 0)
	if !ok {
		return
	}

	trend, err := s.analytics.AnalyzeCategorySpending(r.Context(), userID, mux.Vars(r)["category"], months)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if trend == nil {
		// Not enough history: an informational empty state, not an error.
		writeJSON(w, http.StatusOK, map[string]interface{}{"analysis": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"analysis": trend})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(w, r, "userID")
	if !ok {
		return
	}
	recs, err := s.analytics.CategoryRecommendations(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"recommendations": recs})
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(w, r, "userID")
	if !ok {
		return
	}
	total, err := strconv.ParseFloat(r.URL.Query().Get("total"), 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "total must be a number"})
		return
	}

	allocated, err := s.analytics.OptimizeBudget(r.Context(), userID, total)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"allocations": allocated})
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(w, r, "userID")
	if !ok {
		return
	}
	budgetID, ok := pathInt64(w, r, "budgetID")
	if !ok {
		return
	}

	perf, err := s.performance.BudgetPerformance(r.Context(), userID, budgetID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, perf)
}

func (s *Server) handleDispatchAlerts(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(w, r, "userID")
	if !ok {
		return
	}
	created, err := s.notifications.DispatchAlerts(r.Context(), userID, r.URL.Query().Get("email"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"created": len(created)})
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(w, r, "userID")
	if !ok {
		return
	}

	daysBack, ok := queryInt(w, r, "days_back", 0)
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit", 0)
	if !ok {
		return
	}
	filter := notification.ListFilter{
		UnreadOnly: r.URL.Query().Get("unread_only") == "true",
		DaysBack:   daysBack,
		Limit:      limit,
	}
	if t := r.URL.Query().Get("type"); t != "" {
		nt := notification.Type(t)
		if !nt.Valid() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown notification type"})
			return
		}
		filter.Type = nt
	}

	list, err := s.notifications.List(r.Context(), userID, filter)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"notifications": toNotificationViews(list)})
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(w, r, "userID")
	if !ok {
		return
	}
	count, err := s.notifications.CountUnread(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": count})
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(w, r, "userID")
	if !ok {
		return
	}
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	if err := s.notifications.MarkAsRead(r.Context(), id, userID); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"read": true})
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(w, r, "userID")
	if !ok {
		return
	}
	count, err := s.notifications.MarkAllAsRead(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"marked": count})
}

func (s *Server) handleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(w, r, "userID")
	if !ok {
		return
	}
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	if err := s.notifications.Delete(r.Context(), id, userID); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleDeleteOld(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(w, r, "userID")
	if !ok {
		return
	}
	days, ok := queryInt(w, r, "older_than_days", 0)
	if !ok {
		return
	}
	count, err := s.notifications.DeleteOld(r.Context(), userID, days)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": count})
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(w, r, "userID")
	if !ok {
		return
	}
	pref, err := s.notifications.Preferences(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPreferenceView(pref))
}

type preferenceUpdate struct {
	Type    string `json:"type"`
	Channel string `json:"channel"`
	Enabled bool   `json:"enabled"`
}

func (s *Server) handleUpdatePreference(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(w, r, "userID")
	if !ok {
		return
	}
	var upd preferenceUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed body"})
		return
	}

	pref, err := s.notifications.UpdatePreference(r.Context(), userID,
		notification.Type(upd.Type), notification.Channel(upd.Channel), upd.Enabled)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPreferenceView(pref))
}

// writeError maps the service error taxonomy to status codes. Not-found and
// invalid-input cases stay quiet; everything else is logged as a server error.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, idb.ErrNotificationNotFound), errors.Is(err, idb.ErrBudgetNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, app.ErrInvalidTotalBudget),
		errors.Is(err, app.ErrInvalidLookback),
		errors.Is(err, app.ErrInvalidRetention),
		errors.Is(err, app.ErrUnknownPreference):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		s.logger.WithError(err).Error("request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func pathInt64(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + name})
		return 0, false
	}
	return v, true
}

func queryInt(w http.ResponseWriter, r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": name + " must be an integer"})
		return 0, false
	}
	return v, true
}
