package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type FollowUpStore interface {
	FindAll(ctx context.Context) ([]entity.DueFollowUp, error)
	FindByID(ctx context.Context, id string) (*entity.FollowUp, error)
	Create(ctx context.Context, f *entity.FollowUp) error
	Update(ctx context.Context, f *entity.FollowUp) error
	Delete(ctx context.Context, id string) error
}

type FollowUpHandler struct {
	followUps FollowUpStore
}

func NewFollowUpHandler(followUps FollowUpStore) *FollowUpHandler {
	return &FollowUpHandler{followUps: followUps}
}

func (h *FollowUpHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *FollowUpHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.followUps.FindAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch follow-ups")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *FollowUpHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateFollowUpInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if errs := usecase.ValidateCreateFollowUpInput(input); len(errs) > 0 {
		respondError(w, http.StatusBadRequest, errs[0].Error())
		return
	}

	dueAt, err := usecase.ParseFollowUpDate(input.FollowUpDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "follow_up_date: must be a valid date or RFC3339 datetime")
		return
	}

	followUp, err := entity.NewFollowUp(input.LeadID, input.CustomerID, input.Title, input.Notes, dueAt)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.followUps.Create(r.Context(), followUp); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create follow-up")
		return
	}
	respondJSON(w, http.StatusCreated, followUp)
}

func (h *FollowUpHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.followUps.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondStoreError(w, err, "failed to fetch follow-up")
		return
	}
	respondJSON(w, http.StatusOK, item)
}

type UpdateFollowUpRequest struct {
	Title        string `json:"title"`
	Notes        string `json:"notes"`
	FollowUpDate string `json:"follow_up_date"`
	Status       string `json:"status"`
}

func (h *FollowUpHandler) Update(w http.ResponseWriter, r *http.Request) {
	item, err := h.followUps.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondStoreError(w, err, "failed to fetch follow-up")
		return
	}

	var req UpdateFollowUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.Title != "" {
		item.Title = req.Title
	}
	if req.Notes != "" {
		item.Notes = req.Notes
	}
	if req.FollowUpDate != "" {
		dueAt, err := usecase.ParseFollowUpDate(req.FollowUpDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "follow_up_date: must be a valid date or RFC3339 datetime")
			return
		}
		item.FollowUpDate = dueAt
	}
	if req.Status != "" {
		if !entity.ValidFollowUpStatus(req.Status) {
			respondError(w, http.StatusBadRequest, "status: unknown value")
			return
		}
		item.Status = req.Status
		// Toggling back to pending re-arms the record for notification.
		if req.Status == entity.FollowUpStatusPending || req.Status == entity.FollowUpStatusScheduled {
			item.Notified = false
		}
	}

	if err := h.followUps.Update(r.Context(), item); err != nil {
		h.respondStoreError(w, err, "failed to update follow-up")
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *FollowUpHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.followUps.Delete(r.Context(), id); err != nil {
		h.respondStoreError(w, err, "failed to delete follow-up")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "deleted", "id": id})
}

func (h *FollowUpHandler) respondStoreError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, entity.ErrFollowUpNotFound) {
		respondError(w, http.StatusNotFound, "follow-up not found")
		return
	}
	respondError(w, http.StatusInternalServerError, fallback)
}
