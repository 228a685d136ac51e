package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// CustomerSourceLeadConversion tags customers materialized by the lead
// conversion workflow so they can be reconciled against their origin lead.
const CustomerSourceLeadConversion = "lead-conversion"

type ContactPerson struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Position string `json:"position,omitempty"`
}

const (
	LogTypeCall    = "call"
	LogTypeEmail   = "email"
	LogTypeMeeting = "meeting"
	LogTypeNote    = "note"
)

// CommunicationLog entries are append-only: created, deleted, never edited.
type CommunicationLog struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	ProjectStatusOngoing   = "ongoing"
	ProjectStatusCompleted = "completed"
	ProjectStatusCancelled = "cancelled"
)

type ProjectHistoryEntry struct {
	ID          string     `json:"id"`
	ProjectName string     `json:"project_name"`
	Description string     `json:"description,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Status      string     `json:"status,omitempty"`
}

// Document references a file held by an external storage provider.
// The upload itself happens outside this service.
type Document struct {
	ID         string    `json:"id"`
	FileName   string    `json:"file_name"`
	FileURL    string    `json:"file_url"`
	ProviderID string    `json:"provider_id,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type Customer struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Email       string        `json:"email,omitempty"`
	Phone       string        `json:"phone,omitempty"`
	CompanyName string        `json:"company_name,omitempty"`
	Address     string        `json:"address,omitempty"`
	Notes       string        `json:"notes,omitempty"`
	Source      string        `json:"source,omitempty"`
	Contact     ContactPerson `json:"contact_person"`

	// OriginLeadID is set only for customers created by lead conversion.
	// It keys the conversion upsert so retries reuse the same customer.
	OriginLeadID string `json:"origin_lead_id,omitempty"`

	CommunicationLogs []CommunicationLog    `json:"communication_logs"`
	ProjectHistory    []ProjectHistoryEntry `json:"project_history"`
	Documents         []Document            `json:"documents"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewCustomer(name, email, phone string) (*Customer, error) {
	customer := &Customer{
		ID:                uuid.New().String(),
		Name:              name,
		Email:             email,
		Phone:             phone,
		CommunicationLogs: []CommunicationLog{},
		ProjectHistory:    []ProjectHistoryEntry{},
		Documents:         []Document{},
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}

	if err := customer.Validate(); err != nil {
		return nil, err
	}

	return customer, nil
}

func (c *Customer) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	return nil
}
