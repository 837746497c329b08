package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"stealthcompany.com/icudash/internal/notifications"
)

// NotificationsResponse is the filtered notification view
type NotificationsResponse struct {
	Notifications []notifications.Notification `json:"notifications"`
	UnreadCount   int                          `json:"unreadCount"`
}

// ListNotificationsHandler returns notifications for ?filter=&q=
func (s *Server) ListNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := notifications.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NotificationsResponse{
		Notifications: s.notifications.List(filter, r.URL.Query().Get("q")),
		UnreadCount:   s.notifications.UnreadCount(),
	})
}

// MarkNotificationReadHandler marks one notification read
func (s *Server) MarkNotificationReadHandler(w http.ResponseWriter, r *http.Request) {
	n, err := s.notifications.MarkRead(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// DismissNotificationHandler removes one notification
func (s *Server) DismissNotificationHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.notifications.Dismiss(mux.Vars(r)["id"]); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearNotificationsHandler removes every notification
func (s *Server) ClearNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	s.notifications.Clear()
	w.WriteHeader(http.StatusNoContent)
}
