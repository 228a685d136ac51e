package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type LeadRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Lead, error)
	Update(ctx context.Context, lead *entity.Lead) error
}

type CustomerRepository interface {
	// UpsertByOriginLead inserts the customer keyed on its origin lead id.
	// When a customer for that lead already exists the argument is
	// overwritten with the stored row, so retries converge on one record.
	UpsertByOriginLead(ctx context.Context, c *entity.Customer) error
}

type FollowUpRepository interface {
	// FindDue returns at most limit follow-ups with
	// follow_up_date <= now, status pending or scheduled, notified = false,
	// each joined with the name of its lead or customer when it still exists.
	FindDue(ctx context.Context, now time.Time, limit int) ([]entity.DueFollowUp, error)

	// MarkNotified sets notified = true, status = 'due' on the given ids in
	// one bulk update and reports how many rows changed.
	MarkNotified(ctx context.Context, ids []string) (int64, error)
}

type NotificationRepository interface {
	// InsertBatch persists all notifications in a single bulk insert.
	// The batch lands whole or not at all.
	InsertBatch(ctx context.Context, batch []*entity.Notification) (int, error)
}

// EventPublisher fans notification events out to interested consumers
// (the reminder email worker). Publishing is best-effort: the pipeline
// never fails a tick over it.
type EventPublisher interface {
	PublishNotificationCreated(ctx context.Context, n *entity.Notification) error
}
