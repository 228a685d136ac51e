package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

// NotificationEvent is the wire shape fanned out for every notification the
// pipeline creates. Consumers correlate back through FollowUpID.
type NotificationEvent struct {
	NotificationID string    `json:"notification_id"`
	Message        string    `json:"message"`
	Link           string    `json:"link,omitempty"`
	FollowUpID     string    `json:"follow_up_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type Producer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *Producer {
	return &Producer{Conn: conn, Ch: ch}
}

func newNotificationEvent(n *entity.Notification) NotificationEvent {
	return NotificationEvent{
		NotificationID: n.ID,
		Message:        n.Message,
		Link:           n.Link,
		FollowUpID:     n.Meta.FollowUpID,
		CreatedAt:      n.CreatedAt,
	}
}

func (p *Producer) PublishNotificationCreated(ctx context.Context, n *entity.Notification) error {
	body, err := json.Marshal(newNotificationEvent(n))
	if err != nil {
		return fmt.Errorf("failed to encode notification event: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish notification event: %w", err)
	}

	return nil
}
