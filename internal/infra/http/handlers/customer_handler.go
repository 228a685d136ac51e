package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

type CustomerStore interface {
	FindAll(ctx context.Context) ([]entity.Customer, error)
	FindByID(ctx context.Context, id string) (*entity.Customer, error)
	Create(ctx context.Context, c *entity.Customer) error
	Update(ctx context.Context, c *entity.Customer) error
	Delete(ctx context.Context, id string) error
}

type CustomerHandler struct {
	customers CustomerStore
}

func NewCustomerHandler(customers CustomerStore) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

func (h *CustomerHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	r.Post("/{id}/logs", h.AddLog)
	r.Delete("/{id}/logs/{logId}", h.DeleteLog)
	r.Post("/{id}/projects", h.AddProject)
	r.Delete("/{id}/projects/{projectId}", h.DeleteProject)
	r.Post("/{id}/documents", h.AddDocument)
	r.Delete("/{id}/documents/{documentId}", h.DeleteDocument)
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.FindAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch customers")
		return
	}
	respondJSON(w, http.StatusOK, customers)
}

type CreateCustomerRequest struct {
	Name        string               `json:"name"`
	Email       string               `json:"email"`
	Phone       string               `json:"phone"`
	CompanyName string               `json:"company_name"`
	Address     string               `json:"address"`
	Notes       string               `json:"notes"`
	Contact     entity.ContactPerson `json:"contact_person"`
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	customer, err := entity.NewCustomer(req.Name, req.Email, req.Phone)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	customer.CompanyName = req.CompanyName
	customer.Address = req.Address
	customer.Notes = req.Notes
	customer.Contact = req.Contact

	if err := h.customers.Create(r.Context(), customer); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create customer")
		return
	}
	respondJSON(w, http.StatusCreated, customer)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	customer, err := h.customers.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondStoreError(w, err, "failed to fetch customer")
		return
	}
	respondJSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	customer, err := h.customers.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondStoreError(w, err, "failed to fetch customer")
		return
	}

	var req CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.Name != "" {
		customer.Name = req.Name
	}
	customer.Email = req.Email
	customer.Phone = req.Phone
	customer.CompanyName = req.CompanyName
	customer.Address = req.Address
	customer.Notes = req.Notes
	customer.Contact = req.Contact

	if err := h.customers.Update(r.Context(), customer); err != nil {
		h.respondStoreError(w, err, "failed to update customer")
		return
	}
	respondJSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.customers.Delete(r.Context(), id); err != nil {
		h.respondStoreError(w, err, "failed to delete customer")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "deleted", "id": id})
}

type AddLogRequest struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (h *CustomerHandler) AddLog(w http.ResponseWriter, r *http.Request) {
	var req AddLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Message == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.Type == "" {
		req.Type = entity.LogTypeNote
	}

	h.mutate(w, r, func(c *entity.Customer) error {
		c.CommunicationLogs = append(c.CommunicationLogs, entity.CommunicationLog{
			ID:        uuid.New().String(),
			Type:      req.Type,
			Message:   req.Message,
			Timestamp: time.Now(),
		})
		return nil
	})
}

func (h *CustomerHandler) DeleteLog(w http.ResponseWriter, r *http.Request) {
	logID := chi.URLParam(r, "logId")
	h.mutate(w, r, func(c *entity.Customer) error {
		kept := c.CommunicationLogs[:0]
		for _, l := range c.CommunicationLogs {
			if l.ID != logID {
				kept = append(kept, l)
			}
		}
		c.CommunicationLogs = kept
		return nil
	})
}

type AddProjectRequest struct {
	ProjectName string     `json:"project_name"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Status      string     `json:"status"`
}

func (h *CustomerHandler) AddProject(w http.ResponseWriter, r *http.Request) {
	var req AddProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.ProjectName == "" {
		respondError(w, http.StatusBadRequest, "project_name is required")
		return
	}

	h.mutate(w, r, func(c *entity.Customer) error {
		c.ProjectHistory = append(c.ProjectHistory, entity.ProjectHistoryEntry{
			ID:          uuid.New().String(),
			ProjectName: req.ProjectName,
			Description: req.Description,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
			Status:      req.Status,
		})
		return nil
	})
}

func (h *CustomerHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectId")
	h.mutate(w, r, func(c *entity.Customer) error {
		kept := c.ProjectHistory[:0]
		for _, p := range c.ProjectHistory {
			if p.ID != projectID {
				kept = append(kept, p)
			}
		}
		c.ProjectHistory = kept
		return nil
	})
}

type AddDocumentRequest struct {
	FileName   string `json:"file_name"`
	FileURL    string `json:"file_url"`
	ProviderID string `json:"provider_id"`
}

func (h *CustomerHandler) AddDocument(w http.ResponseWriter, r *http.Request) {
	var req AddDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.FileName == "" || req.FileURL == "" {
		respondError(w, http.StatusBadRequest, "file_name and file_url are required")
		return
	}

	h.mutate(w, r, func(c *entity.Customer) error {
		c.Documents = append(c.Documents, entity.Document{
			ID:         uuid.New().String(),
			FileName:   req.FileName,
			FileURL:    req.FileURL,
			ProviderID: req.ProviderID,
			UploadedAt: time.Now(),
		})
		return nil
	})
}

func (h *CustomerHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "documentId")
	h.mutate(w, r, func(c *entity.Customer) error {
		kept := c.Documents[:0]
		for _, d := range c.Documents {
			if d.ID != documentID {
				kept = append(kept, d)
			}
		}
		c.Documents = kept
		return nil
	})
}

// mutate loads the customer, applies the change to its nested sequences
// and writes the row back.
func (h *CustomerHandler) mutate(w http.ResponseWriter, r *http.Request, apply func(*entity.Customer) error) {
	customer, err := h.customers.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondStoreError(w, err, "failed to fetch customer")
		return
	}

	if err := apply(customer); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.customers.Update(r.Context(), customer); err != nil {
		h.respondStoreError(w, err, "failed to update customer")
		return
	}
	respondJSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) respondStoreError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, entity.ErrCustomerNotFound) {
		respondError(w, http.StatusNotFound, "customer not found")
		return
	}
	respondError(w, http.StatusInternalServerError, fallback)
}
