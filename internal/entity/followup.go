package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Follow-up status set. Pending and scheduled records are candidates for
// notification; due is the post-notification state; completed and overdue
// are set by user actions.
const (
	FollowUpStatusPending   = "pending"
	FollowUpStatusScheduled = "scheduled"
	FollowUpStatusDue       = "due"
	FollowUpStatusCompleted = "completed"
	FollowUpStatusOverdue   = "overdue"
)

var followUpStatuses = map[string]bool{
	FollowUpStatusPending:   true,
	FollowUpStatusScheduled: true,
	FollowUpStatusDue:       true,
	FollowUpStatusCompleted: true,
	FollowUpStatusOverdue:   true,
}

func ValidFollowUpStatus(s string) bool {
	return followUpStatuses[s]
}

// FollowUp references its lead or customer by id only. The referenced record
// may have been deleted; readers resolve the reference best-effort.
type FollowUp struct {
	ID           string    `json:"id"`
	LeadID       string    `json:"lead_id,omitempty"`
	CustomerID   string    `json:"customer_id,omitempty"`
	AssignedTo   string    `json:"assigned_to,omitempty"`
	Title        string    `json:"title"`
	Notes        string    `json:"notes,omitempty"`
	FollowUpDate time.Time `json:"follow_up_date"`
	Status       string    `json:"status"`
	Notified     bool      `json:"notified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewFollowUp(leadID, customerID, title, notes string, followUpDate time.Time) (*FollowUp, error) {
	f := &FollowUp{
		ID:           uuid.New().String(),
		LeadID:       leadID,
		CustomerID:   customerID,
		Title:        title,
		Notes:        notes,
		FollowUpDate: followUpDate,
		Status:       FollowUpStatusPending,
		Notified:     false,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}

	return f, nil
}

func (f *FollowUp) Validate() error {
	if f.Title == "" {
		return errors.New("title is required")
	}
	if f.FollowUpDate.IsZero() {
		return errors.New("follow_up_date is required")
	}
	return nil
}

// DueFollowUp is a follow-up that crossed its due time, joined with the name
// of whichever record it references. Lead and Customer are nil when the
// reference is unset or dangling.
type DueFollowUp struct {
	FollowUp
	Lead     *LeadRef     `json:"lead,omitempty"`
	Customer *CustomerRef `json:"customer,omitempty"`
}

type LeadRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CustomerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
