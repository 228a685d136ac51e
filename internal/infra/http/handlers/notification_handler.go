package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

type NotificationStore interface {
	FindAll(ctx context.Context) ([]entity.Notification, error)
	Create(ctx context.Context, n *entity.Notification) error
	MarkRead(ctx context.Context, id string) (*entity.Notification, error)
	Delete(ctx context.Context, id string) error
}

type NotificationHandler struct {
	notifications NotificationStore
}

func NewNotificationHandler(notifications NotificationStore) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Patch("/{id}/read", h.MarkRead)
	r.Delete("/{id}", h.Delete)
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.notifications.FindAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch notifications")
		return
	}
	respondJSON(w, http.StatusOK, notifications)
}

type CreateNotificationRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
	Link    string `json:"link"`
}

func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Message == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	notification := entity.NewNotification(req.Message, req.Link, "")
	notification.UserID = req.UserID

	if err := h.notifications.Create(r.Context(), notification); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create notification")
		return
	}
	respondJSON(w, http.StatusCreated, notification)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	notification, err := h.notifications.MarkRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, entity.ErrNotificationNotFound) {
			respondError(w, http.StatusNotFound, "notification not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to mark notification read")
		return
	}
	respondJSON(w, http.StatusOK, notification)
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.notifications.Delete(r.Context(), id); err != nil {
		if errors.Is(err, entity.ErrNotificationNotFound) {
			respondError(w, http.StatusNotFound, "notification not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete notification")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "deleted", "id": id})
}
