package entity

import (
	"time"

	"github.com/google/uuid"
)

// Lead status lifecycle. Converted is terminal for conversion purposes.
const (
	LeadStatusNew        = "new"
	LeadStatusInProgress = "in-progress"
	LeadStatusConverted  = "converted"
	LeadStatusLost       = "lost"
)

const (
	LeadPriorityHot  = "hot"
	LeadPriorityWarm = "warm"
	LeadPriorityCold = "cold"
)

var LeadSources = []string{"website", "facebook", "instagram", "google-ads", "referral", "manual", "other"}

type Lead struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Source      string     `json:"source"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	ConvertedAt *time.Time `json:"converted_at,omitempty"`
	AssignedTo  string     `json:"assigned_to,omitempty"`
	Tags        []string   `json:"tags"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func NewLead(name, email, phone, notes string) *Lead {
	now := time.Now()
	return &Lead{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		Notes:     notes,
		Source:    "manual",
		Status:    LeadStatusNew,
		Priority:  LeadPriorityWarm,
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (l *Lead) Converted() bool {
	return l.Status == LeadStatusConverted
}

func ValidLeadSource(s string) bool {
	for _, v := range LeadSources {
		if v == s {
			return true
		}
	}
	return false
}
