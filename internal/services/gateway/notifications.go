package gateway

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/abderrahmenzaway/wie-empower/internal/model"
	"github.com/abderrahmenzaway/wie-empower/internal/model/entities"
)

func (a *App) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	unreadOnly := r.URL.Query().Get("unread") == "true"
	list, err := a.notifications.List(r.Context(), userID(r), unreadOnly)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, list)
}

func (a *App) handleCreateNotification(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Kind     string            `json:"kind"`
		Message  string            `json:"message" validate:"required"`
		Severity entities.Severity `json:"severity"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondErr(w, err)
		return
	}
	if err := a.validate.Struct(body); err != nil {
		respondErr(w, model.Invalidf("body", "%v", err))
		return
	}
	if body.Severity == "" {
		body.Severity = entities.SeverityInfo
	}
	if body.Kind == "" {
		body.Kind = "general"
	}
	n, err := a.notifications.Create(r.Context(), userID(r), body.Kind, body.Message, body.Severity)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusCreated, n)
}

func (a *App) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	n, err := a.notifications.MarkRead(r.Context(), mux.Vars(r)["id"], userID(r))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, n)
}

func (a *App) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := a.notifications.MarkAllRead(r.Context(), userID(r)); err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]bool{"read": true})
}

func (a *App) handleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	if err := a.notifications.Delete(r.Context(), mux.Vars(r)["id"], userID(r)); err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"id": mux.Vars(r)["id"]})
}

func (a *App) handleDeleteAllNotifications(w http.ResponseWriter, r *http.Request) {
	if err := a.notifications.DeleteAll(r.Context(), userID(r)); err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]bool{"deleted": true})
}
