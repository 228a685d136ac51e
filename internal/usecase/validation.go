package usecase

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type CreateLeadInput struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Notes    string   `json:"notes"`
	Source   string   `json:"source"`
	Priority string   `json:"priority"`
	Tags     []string `json:"tags"`
}

func ValidateCreateLeadInput(input CreateLeadInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.Name) == "" {
		errors = append(errors, ValidationError{"name", "is required"})
	} else if len(input.Name) > 200 {
		errors = append(errors, ValidationError{"name", "must not exceed 200 characters"})
	}

	if input.Email != "" {
		if _, err := mail.ParseAddress(input.Email); err != nil {
			errors = append(errors, ValidationError{"email", "is invalid"})
		}
	}

	if input.Source != "" && !entity.ValidLeadSource(input.Source) {
		errors = append(errors, ValidationError{"source", "is not a known lead source"})
	}

	if input.Priority != "" &&
		input.Priority != entity.LeadPriorityHot &&
		input.Priority != entity.LeadPriorityWarm &&
		input.Priority != entity.LeadPriorityCold {
		errors = append(errors, ValidationError{"priority", "must be hot, warm or cold"})
	}

	return errors
}

type CreateFollowUpInput struct {
	LeadID       string `json:"lead_id"`
	CustomerID   string `json:"customer_id"`
	Title        string `json:"title"`
	Notes        string `json:"notes"`
	FollowUpDate string `json:"follow_up_date"`
}

func ValidateCreateFollowUpInput(input CreateFollowUpInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.Title) == "" {
		errors = append(errors, ValidationError{"title", "is required"})
	}

	if strings.TrimSpace(input.FollowUpDate) == "" {
		errors = append(errors, ValidationError{"follow_up_date", "is required"})
	} else if !isValidDate(input.FollowUpDate) {
		errors = append(errors, ValidationError{"follow_up_date", "must be a valid date or RFC3339 datetime"})
	}

	return errors
}

func isValidDate(dateStr string) bool {
	if _, err := time.Parse("2006-01-02", dateStr); err == nil {
		return true
	}
	if _, err := time.Parse(time.RFC3339, dateStr); err == nil {
		return true
	}
	return false
}

// ParseFollowUpDate accepts a bare date or an RFC3339 instant.
func ParseFollowUpDate(dateStr string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, dateStr); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", dateStr)
}
