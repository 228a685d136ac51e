package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateCreateLeadInput(t *testing.T) {
	tests := []struct {
		name      string
		input     CreateLeadInput
		wantField string
	}{
		{
			name:  "valid minimal input",
			input: CreateLeadInput{Name: "Maria Souza"},
		},
		{
			name:      "missing name",
			input:     CreateLeadInput{Email: "maria@example.com"},
			wantField: "name",
		},
		{
			name:      "bad email",
			input:     CreateLeadInput{Name: "Maria", Email: "not-an-email"},
			wantField: "email",
		},
		{
			name:      "unknown source",
			input:     CreateLeadInput{Name: "Maria", Source: "carrier-pigeon"},
			wantField: "source",
		},
		{
			name:      "unknown priority",
			input:     CreateLeadInput{Name: "Maria", Priority: "boiling"},
			wantField: "priority",
		},
		{
			name:  "known source and priority",
			input: CreateLeadInput{Name: "Maria", Source: "referral", Priority: "hot"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateCreateLeadInput(tt.input)
			if tt.wantField == "" {
				assert.Empty(t, errs)
				return
			}
			assert.NotEmpty(t, errs)
			assert.Equal(t, tt.wantField, errs[0].Field)
		})
	}
}

func TestValidateCreateFollowUpInput(t *testing.T) {
	valid := CreateFollowUpInput{
		Title:        "Call back",
		FollowUpDate: "2026-09-01",
	}
	assert.Empty(t, ValidateCreateFollowUpInput(valid))

	missingTitle := valid
	missingTitle.Title = " "
	errs := ValidateCreateFollowUpInput(missingTitle)
	assert.NotEmpty(t, errs)
	assert.Equal(t, "title", errs[0].Field)

	badDate := valid
	badDate.FollowUpDate = "tomorrow-ish"
	errs = ValidateCreateFollowUpInput(badDate)
	assert.NotEmpty(t, errs)
	assert.Equal(t, "follow_up_date", errs[0].Field)
}

func TestParseFollowUpDate(t *testing.T) {
	got, err := ParseFollowUpDate("2026-09-01")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseFollowUpDate("2026-09-01T15:04:05Z")
	assert.NoError(t, err)
	assert.Equal(t, 15, got.Hour())

	_, err = ParseFollowUpDate("next tuesday")
	assert.Error(t, err)
}
