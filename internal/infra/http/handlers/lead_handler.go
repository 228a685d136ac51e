package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type LeadStore interface {
	FindAll(ctx context.Context) ([]entity.Lead, error)
	FindByID(ctx context.Context, id string) (*entity.Lead, error)
	Create(ctx context.Context, lead *entity.Lead) error
	Delete(ctx context.Context, id string) error
}

type FollowUpCreator interface {
	Create(ctx context.Context, f *entity.FollowUp) error
}

type LeadHandler struct {
	leads     LeadStore
	converter *usecase.ConvertLeadUseCase
	followUps FollowUpCreator
}

func NewLeadHandler(leads LeadStore, converter *usecase.ConvertLeadUseCase, followUps FollowUpCreator) *LeadHandler {
	return &LeadHandler{
		leads:     leads,
		converter: converter,
		followUps: followUps,
	}
}

func (h *LeadHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/convert", h.Convert)
}

func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	leads, err := h.leads.FindAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch leads")
		return
	}
	respondJSON(w, http.StatusOK, leads)
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if errs := usecase.ValidateCreateLeadInput(input); len(errs) > 0 {
		respondError(w, http.StatusBadRequest, errs[0].Error())
		return
	}

	lead := entity.NewLead(input.Name, input.Email, input.Phone, input.Notes)
	if input.Source != "" {
		lead.Source = input.Source
	}
	if input.Priority != "" {
		lead.Priority = input.Priority
	}
	if len(input.Tags) > 0 {
		lead.Tags = input.Tags
	}

	if err := h.leads.Create(r.Context(), lead); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create lead")
		return
	}
	respondJSON(w, http.StatusCreated, lead)
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	lead, err := h.leads.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			respondError(w, http.StatusNotFound, "lead not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to fetch lead")
		return
	}
	respondJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.leads.Delete(r.Context(), id); err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			respondError(w, http.StatusNotFound, "lead not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete lead")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "deleted", "id": id})
}

type ConvertLeadRequest struct {
	// FollowUpInDays > 0 schedules a follow-up for the new customer that
	// many days out. Zero means no follow-up.
	FollowUpInDays int    `json:"follow_up_in_days"`
	FollowUpTitle  string `json:"follow_up_title"`
}

type ConvertLeadResponse struct {
	Customer *entity.Customer `json:"customer"`
	Lead     *entity.Lead     `json:"lead"`
	FollowUp *entity.FollowUp `json:"follow_up,omitempty"`
}

func (h *LeadHandler) Convert(w http.ResponseWriter, r *http.Request) {
	var req ConvertLeadRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}

	out, err := h.converter.Execute(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		var domainErr *usecase.DomainError
		if errors.As(err, &domainErr) {
			status := http.StatusBadRequest
			if domainErr.Code == usecase.CodeLeadNotFound {
				status = http.StatusNotFound
			}
			respondError(w, status, domainErr.Message)
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	middleware.RecordLeadConversion()

	resp := ConvertLeadResponse{Customer: out.Customer, Lead: out.Lead}

	if req.FollowUpInDays > 0 {
		title := req.FollowUpTitle
		if title == "" {
			title = "Follow up with " + out.Customer.Name
		}

		dueAt := time.Now().AddDate(0, 0, req.FollowUpInDays)
		followUp, err := entity.NewFollowUp("", out.Customer.ID, title, "", dueAt)
		if err == nil {
			err = h.followUps.Create(r.Context(), followUp)
		}
		if err != nil {
			// The conversion itself landed; report it and leave the
			// follow-up to the caller.
			log.Printf("lead conversion: follow-up creation failed for customer %s: %v", out.Customer.ID, err)
		} else {
			resp.FollowUp = followUp
		}
	}

	respondJSON(w, http.StatusOK, resp)
}
