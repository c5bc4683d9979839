package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/vacationrentals/internal/application/services"
	"github.com/zatekoja/vacationrentals/internal/domain/entities"
)

// NotificationService defines the notification operations used by the handler.
type NotificationService interface {
	Create(ctx context.Context, actor entities.Actor, req services.CreateNotificationRequest) (*entities.Notification, error)
	List(ctx context.Context, actor entities.Actor, unreadOnly bool, page entities.Pagination) (*services.NotificationPage, error)
	Get(ctx context.Context, actor entities.Actor, id string) (*entities.Notification, error)
	SetRead(ctx context.Context, actor entities.Actor, id string, read bool) (*entities.Notification, error)
	Delete(ctx context.Context, actor entities.Actor, id string) error
	MarkAllRead(ctx context.Context, actor entities.Actor) (int64, error)
}

// NotificationHandler handles the in-app notification inbox
type NotificationHandler struct {
	service NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(service NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

type markReadRequest struct {
	IsRead *bool `json:"isRead"`
}

// ListNotifications handles GET /api/notifications?unread=true
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"
	result, err := h.service.List(r.Context(), actor, unreadOnly, pageFromQuery(r))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// CreateNotification handles POST /api/notifications (admin only)
func (h *NotificationHandler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req services.CreateNotificationRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	n, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, n)
}

// GetNotification handles GET /api/notifications/{id}
func (h *NotificationHandler) GetNotification(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	n, err := h.service.Get(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, n)
}

// UpdateNotification handles PATCH /api/notifications/{id} with {isRead}
func (h *NotificationHandler) UpdateNotification(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req markReadRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if req.IsRead == nil {
		respondWithError(w, http.StatusBadRequest, "isRead is required")
		return
	}

	n, err := h.service.SetRead(r.Context(), actor, r.PathValue("id"), *req.IsRead)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, n)
}

// DeleteNotification handles DELETE /api/notifications/{id}
func (h *NotificationHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), actor, r.PathValue("id")); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead handles POST /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	updated, err := h.service.MarkAllRead(r.Context(), actor)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int64{"updated": updated})
}
