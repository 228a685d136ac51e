package queue

import (
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ReminderSender delivers a follow-up reminder out-of-band (email today).
type ReminderSender interface {
	SendReminder(to, message, link string) error
}

// Worker drains the reminder queue and turns notification events into
// emails for the configured inbox.
type Worker struct {
	Channel *amqp.Channel
	Sender  ReminderSender
	Inbox   string
}

func NewWorker(ch *amqp.Channel, sender ReminderSender, inbox string) *Worker {
	return &Worker{
		Channel: ch,
		Sender:  sender,
		Inbox:   inbox,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer tag
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		log.Fatalf("reminder worker: consume failed: %s", err)
	}

	for d := range msgs {
		var event NotificationEvent
		if err := json.Unmarshal(d.Body, &event); err != nil {
			log.Printf("reminder worker: dropping malformed event: %s", err)
			// Malformed payload will never parse; no requeue.
			d.Nack(false, false)
			continue
		}

		if err := w.Sender.SendReminder(w.Inbox, event.Message, event.Link); err != nil {
			log.Printf("reminder worker: send failed for notification %s: %s", event.NotificationID, err)
			// Dead-letter instead of requeue so one broken address can't
			// wedge the queue.
			d.Nack(false, false)
			continue
		}

		d.Ack(false)
	}
}
