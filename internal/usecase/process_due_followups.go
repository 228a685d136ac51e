package usecase

import (
	"context"
	"log"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

const DefaultScanBatchSize = 200

// ProcessDueFollowUpsUseCase runs one tick of the follow-up pipeline:
// scan due records, insert one notification per record, then flip the
// records to notified/due. The insert and the flip are two independent
// writes; a crash between them means the next tick re-scans the same
// records and emits duplicates. Delivery is at-least-once: a due follow-up
// produces a notification one or more times, never zero.
type ProcessDueFollowUpsUseCase struct {
	FollowUps     FollowUpRepository
	Notifications NotificationRepository
	Events        EventPublisher

	BatchSize int
	Now       func() time.Time
}

func NewProcessDueFollowUpsUseCase(
	followUps FollowUpRepository,
	notifications NotificationRepository,
	events EventPublisher,
) *ProcessDueFollowUpsUseCase {
	return &ProcessDueFollowUpsUseCase{
		FollowUps:     followUps,
		Notifications: notifications,
		Events:        events,
		BatchSize:     DefaultScanBatchSize,
		Now:           time.Now,
	}
}

// Execute returns the number of notifications created this tick.
func (uc *ProcessDueFollowUpsUseCase) Execute(ctx context.Context) (int, error) {
	now := uc.Now()

	due, err := uc.FollowUps.FindDue(ctx, now, uc.BatchSize)
	if err != nil {
		return 0, &TechnicalError{
			Code:    CodeStoreUnavailable,
			Message: "due scan failed: " + err.Error(),
		}
	}

	if len(due) == 0 {
		return 0, nil
	}

	batch := make([]*entity.Notification, 0, len(due))
	ids := make([]string, 0, len(due))
	for _, f := range due {
		batch = append(batch, buildDueNotification(f))
		ids = append(ids, f.ID)
	}

	if _, err := uc.Notifications.InsertBatch(ctx, batch); err != nil {
		return 0, &TechnicalError{
			Code:    CodeStoreUnavailable,
			Message: "notification insert failed: " + err.Error(),
		}
	}

	// Fan-out is best-effort. A consumer outage must not fail the tick,
	// or the status flip below would never run and every later tick would
	// re-emit the whole batch.
	if uc.Events != nil {
		for _, n := range batch {
			if err := uc.Events.PublishNotificationCreated(ctx, n); err != nil {
				log.Printf("follow-up pipeline: publish failed for notification %s: %v", n.ID, err)
			}
		}
	}

	if _, err := uc.FollowUps.MarkNotified(ctx, ids); err != nil {
		return len(batch), &TechnicalError{
			Code:    CodeStoreUnavailable,
			Message: "follow-up status update failed: " + err.Error(),
		}
	}

	return len(batch), nil
}

func buildDueNotification(f entity.DueFollowUp) *entity.Notification {
	title := f.Title
	if title == "" {
		title = "Untitled"
	}

	message := "Follow-up due: " + title
	link := "/follow-ups"

	switch {
	case f.Lead != nil:
		message += " (Lead: " + f.Lead.Name + ")"
		link = "/leads/" + f.Lead.ID
	case f.Customer != nil:
		message += " (Customer: " + f.Customer.Name + ")"
		link = "/customers/" + f.Customer.ID
	}

	return entity.NewNotification(message, link, f.ID)
}
