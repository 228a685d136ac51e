package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

func TestNotificationEventCarriesCorrelationFields(t *testing.T) {
	createdAt := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	n := &entity.Notification{
		ID:        "n-1",
		Message:   "Follow-up due: Call back (Lead: Maria Souza)",
		Link:      "/leads/lead-1",
		Meta:      entity.NotificationMeta{FollowUpID: "fu-1"},
		CreatedAt: createdAt,
	}

	event := newNotificationEvent(n)

	assert.Equal(t, "n-1", event.NotificationID)
	assert.Equal(t, "Follow-up due: Call back (Lead: Maria Souza)", event.Message)
	assert.Equal(t, "/leads/lead-1", event.Link)
	assert.Equal(t, "fu-1", event.FollowUpID)
	assert.Equal(t, createdAt, event.CreatedAt)
}

func TestNotificationEventWireFormat(t *testing.T) {
	event := newNotificationEvent(&entity.Notification{
		ID:        "n-1",
		Message:   "Follow-up due: Untitled",
		Link:      "/follow-ups",
		Meta:      entity.NotificationMeta{FollowUpID: "fu-9"},
		CreatedAt: time.Now().UTC(),
	})

	body, err := json.Marshal(event)
	assert.NoError(t, err)

	var raw map[string]interface{}
	assert.NoError(t, json.Unmarshal(body, &raw))

	for _, key := range []string{"notification_id", "message", "link", "follow_up_id", "created_at"} {
		assert.Contains(t, raw, key)
	}
}

func TestNotificationEventOmitsEmptyOptionalFields(t *testing.T) {
	event := newNotificationEvent(&entity.Notification{
		ID:        "n-2",
		Message:   "Follow-up due: Untitled",
		CreatedAt: time.Now().UTC(),
	})

	body, err := json.Marshal(event)
	assert.NoError(t, err)

	var raw map[string]interface{}
	assert.NoError(t, json.Unmarshal(body, &raw))

	assert.NotContains(t, raw, "link")
	assert.NotContains(t, raw, "follow_up_id")
}
