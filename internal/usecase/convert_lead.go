package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

// ConvertLeadUseCase materializes a customer from a lead and marks the lead
// converted. The two writes are not covered by a transaction; instead the
// customer insert is keyed on the origin lead id, so a retry after a
// mid-flight failure lands on the customer the first attempt created
// instead of minting a duplicate.
type ConvertLeadUseCase struct {
	Leads     LeadRepository
	Customers CustomerRepository

	Now func() time.Time
}

func NewConvertLeadUseCase(leads LeadRepository, customers CustomerRepository) *ConvertLeadUseCase {
	return &ConvertLeadUseCase{
		Leads:     leads,
		Customers: customers,
		Now:       time.Now,
	}
}

type ConvertLeadOutput struct {
	Customer *entity.Customer `json:"customer"`
	Lead     *entity.Lead     `json:"lead"`
}

func (uc *ConvertLeadUseCase) Execute(ctx context.Context, leadID string) (*ConvertLeadOutput, error) {
	lead, err := uc.Leads.FindByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, &DomainError{
				Code:    CodeLeadNotFound,
				Message: "lead not found: " + leadID,
			}
		}
		return nil, &TechnicalError{
			Code:    CodeStoreUnavailable,
			Message: "failed to load lead: " + err.Error(),
		}
	}

	customer := &entity.Customer{
		ID:                uuid.New().String(),
		Name:              lead.Name,
		Email:             lead.Email,
		Phone:             lead.Phone,
		Notes:             lead.Notes,
		Source:            entity.CustomerSourceLeadConversion,
		OriginLeadID:      lead.ID,
		CommunicationLogs: []entity.CommunicationLog{},
		ProjectHistory:    []entity.ProjectHistoryEntry{},
		Documents:         []entity.Document{},
		CreatedAt:         uc.Now(),
		UpdatedAt:         uc.Now(),
	}

	if err := uc.Customers.UpsertByOriginLead(ctx, customer); err != nil {
		return nil, &TechnicalError{
			Code:    CodeStoreUnavailable,
			Message: "failed to persist customer: " + err.Error(),
		}
	}

	if !lead.Converted() {
		now := uc.Now()
		lead.Status = entity.LeadStatusConverted
		lead.ConvertedAt = &now
		lead.UpdatedAt = now

		if err := uc.Leads.Update(ctx, lead); err != nil {
			// The customer write already landed. Surfacing the error leaves
			// the lead unconverted; the caller's retry re-runs the upsert
			// and converges on the same customer.
			if errors.Is(err, entity.ErrLeadNotFound) {
				return nil, &DomainError{
					Code:    CodeLeadNotFound,
					Message: "lead disappeared during conversion: " + leadID,
				}
			}
			return nil, &TechnicalError{
				Code:    CodeStoreUnavailable,
				Message: "failed to mark lead converted: " + err.Error(),
			}
		}
	}

	return &ConvertLeadOutput{Customer: customer, Lead: lead}, nil
}
