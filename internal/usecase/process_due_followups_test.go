package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

// MockFollowUpRepository
type MockFollowUpRepository struct {
	mock.Mock
}

func (m *MockFollowUpRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]entity.DueFollowUp, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.DueFollowUp), args.Error(1)
}

func (m *MockFollowUpRepository) MarkNotified(ctx context.Context, ids []string) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

// MockNotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) InsertBatch(ctx context.Context, batch []*entity.Notification) (int, error) {
	args := m.Called(ctx, batch)
	return args.Int(0), args.Error(1)
}

// MockEventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishNotificationCreated(ctx context.Context, n *entity.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func dueFollowUp(id, title string) entity.DueFollowUp {
	return entity.DueFollowUp{
		FollowUp: entity.FollowUp{
			ID:           id,
			Title:        title,
			FollowUpDate: time.Now().Add(-time.Hour),
			Status:       entity.FollowUpStatusPending,
			Notified:     false,
		},
	}
}

func TestTickCreatesNotificationForDueFollowUp(t *testing.T) {
	ctx := context.Background()
	followUps := new(MockFollowUpRepository)
	notifications := new(MockNotificationRepository)

	due := dueFollowUp("fu-1", "Call back")
	due.LeadID = "lead-1"
	due.Lead = &entity.LeadRef{ID: "lead-1", Name: "Maria Souza"}

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	followUps.On("FindDue", ctx, now, DefaultScanBatchSize).
		Return([]entity.DueFollowUp{due}, nil)
	notifications.On("InsertBatch", ctx, mock.MatchedBy(func(batch []*entity.Notification) bool {
		return len(batch) == 1 &&
			batch[0].Message == "Follow-up due: Call back (Lead: Maria Souza)" &&
			batch[0].Link == "/leads/lead-1" &&
			batch[0].Meta.FollowUpID == "fu-1" &&
			!batch[0].Read
	})).Return(1, nil)
	followUps.On("MarkNotified", ctx, []string{"fu-1"}).Return(int64(1), nil)

	uc := NewProcessDueFollowUpsUseCase(followUps, notifications, nil)
	uc.Now = func() time.Time { return now }

	created, err := uc.Execute(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, created)
	followUps.AssertExpectations(t)
	notifications.AssertExpectations(t)
}

func TestTickIsQuietWhenNothingIsDue(t *testing.T) {
	ctx := context.Background()
	followUps := new(MockFollowUpRepository)
	notifications := new(MockNotificationRepository)

	followUps.On("FindDue", ctx, mock.Anything, DefaultScanBatchSize).
		Return([]entity.DueFollowUp{}, nil)

	uc := NewProcessDueFollowUpsUseCase(followUps, notifications, nil)

	created, err := uc.Execute(ctx)

	assert.NoError(t, err)
	assert.Zero(t, created)
	notifications.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
	followUps.AssertNotCalled(t, "MarkNotified", mock.Anything, mock.Anything)
}

func TestTickMessageFallbacks(t *testing.T) {
	ctx := context.Background()
	followUps := new(MockFollowUpRepository)
	notifications := new(MockNotificationRepository)

	untitled := dueFollowUp("fu-1", "")
	withCustomer := dueFollowUp("fu-2", "Renew contract")
	withCustomer.CustomerID = "cust-9"
	withCustomer.Customer = &entity.CustomerRef{ID: "cust-9", Name: "Acme Ltda"}
	dangling := dueFollowUp("fu-3", "Check in")
	dangling.LeadID = "lead-gone" // lead deleted, reference did not resolve

	followUps.On("FindDue", ctx, mock.Anything, mock.Anything).
		Return([]entity.DueFollowUp{untitled, withCustomer, dangling}, nil)
	notifications.On("InsertBatch", ctx, mock.MatchedBy(func(batch []*entity.Notification) bool {
		return len(batch) == 3 &&
			batch[0].Message == "Follow-up due: Untitled" &&
			batch[0].Link == "/follow-ups" &&
			batch[1].Message == "Follow-up due: Renew contract (Customer: Acme Ltda)" &&
			batch[1].Link == "/customers/cust-9" &&
			batch[2].Message == "Follow-up due: Check in" &&
			batch[2].Link == "/follow-ups"
	})).Return(3, nil)
	followUps.On("MarkNotified", ctx, []string{"fu-1", "fu-2", "fu-3"}).Return(int64(3), nil)

	uc := NewProcessDueFollowUpsUseCase(followUps, notifications, nil)

	created, err := uc.Execute(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 3, created)
	notifications.AssertExpectations(t)
}

func TestTickDoesNotTransitionWhenInsertFails(t *testing.T) {
	ctx := context.Background()
	followUps := new(MockFollowUpRepository)
	notifications := new(MockNotificationRepository)

	followUps.On("FindDue", ctx, mock.Anything, mock.Anything).
		Return([]entity.DueFollowUp{dueFollowUp("fu-1", "Call back")}, nil)
	notifications.On("InsertBatch", ctx, mock.Anything).
		Return(0, errors.New("connection reset"))

	uc := NewProcessDueFollowUpsUseCase(followUps, notifications, nil)

	created, err := uc.Execute(ctx)

	assert.Error(t, err)
	assert.True(t, IsTechnicalError(err))
	assert.Zero(t, created)
	// Follow-ups stay un-notified so the next tick retries the whole batch.
	followUps.AssertNotCalled(t, "MarkNotified", mock.Anything, mock.Anything)
}

// A crash between the notification insert and the status flip means the
// next tick re-scans the same records and emits duplicates. At-least-once:
// duplicates are accepted, state corruption is not.
func TestTickReEmitsAfterCrashBetweenWrites(t *testing.T) {
	ctx := context.Background()
	followUps := new(MockFollowUpRepository)
	notifications := new(MockNotificationRepository)

	due := dueFollowUp("fu-1", "Call back")

	followUps.On("FindDue", ctx, mock.Anything, mock.Anything).
		Return([]entity.DueFollowUp{due}, nil).Twice()
	notifications.On("InsertBatch", ctx, mock.Anything).Return(1, nil).Twice()
	// First tick: insert lands, the flip does not.
	followUps.On("MarkNotified", ctx, []string{"fu-1"}).
		Return(int64(0), errors.New("connection lost")).Once()
	// Second tick: same record again, flip lands this time.
	followUps.On("MarkNotified", ctx, []string{"fu-1"}).Return(int64(1), nil).Once()

	uc := NewProcessDueFollowUpsUseCase(followUps, notifications, nil)

	created, err := uc.Execute(ctx)
	assert.Error(t, err)
	assert.Equal(t, 1, created)

	created, err = uc.Execute(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, created)

	notifications.AssertNumberOfCalls(t, "InsertBatch", 2)
	followUps.AssertExpectations(t)
}

func TestTickUsesConfiguredBatchSize(t *testing.T) {
	ctx := context.Background()
	followUps := new(MockFollowUpRepository)
	notifications := new(MockNotificationRepository)

	// One tick asks the store for at most the cap; anything beyond it
	// waits for the next tick.
	capped := make([]entity.DueFollowUp, 200)
	for i := range capped {
		capped[i] = dueFollowUp(fmt.Sprintf("fu-%d", i), "Bulk")
	}

	followUps.On("FindDue", ctx, mock.Anything, 200).Return(capped, nil)
	notifications.On("InsertBatch", ctx, mock.MatchedBy(func(batch []*entity.Notification) bool {
		return len(batch) == 200
	})).Return(200, nil)
	followUps.On("MarkNotified", ctx, mock.MatchedBy(func(got []string) bool {
		return len(got) == 200
	})).Return(int64(200), nil)

	uc := NewProcessDueFollowUpsUseCase(followUps, notifications, nil)
	uc.BatchSize = 200

	created, err := uc.Execute(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 200, created)
	followUps.AssertCalled(t, "FindDue", ctx, mock.Anything, 200)
}

func TestTickSurvivesPublishFailure(t *testing.T) {
	ctx := context.Background()
	followUps := new(MockFollowUpRepository)
	notifications := new(MockNotificationRepository)
	events := new(MockEventPublisher)

	followUps.On("FindDue", ctx, mock.Anything, mock.Anything).
		Return([]entity.DueFollowUp{dueFollowUp("fu-1", "Call back")}, nil)
	notifications.On("InsertBatch", ctx, mock.Anything).Return(1, nil)
	events.On("PublishNotificationCreated", ctx, mock.Anything).
		Return(errors.New("broker down"))
	followUps.On("MarkNotified", ctx, []string{"fu-1"}).Return(int64(1), nil)

	uc := NewProcessDueFollowUpsUseCase(followUps, notifications, events)

	created, err := uc.Execute(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, created)
	followUps.AssertCalled(t, "MarkNotified", ctx, []string{"fu-1"})
}

func TestTickFailsCleanlyWhenScanFails(t *testing.T) {
	ctx := context.Background()
	followUps := new(MockFollowUpRepository)
	notifications := new(MockNotificationRepository)

	followUps.On("FindDue", ctx, mock.Anything, mock.Anything).
		Return(nil, errors.New("store unavailable"))

	uc := NewProcessDueFollowUpsUseCase(followUps, notifications, nil)

	created, err := uc.Execute(ctx)

	assert.Error(t, err)
	assert.True(t, IsTechnicalError(err))
	assert.Zero(t, created)
	notifications.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
}
