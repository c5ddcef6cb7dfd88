package queue

import (
	"encoding/json"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// EnrollmentNotifier is the contract for the welcome notification sent
// after a conversion.
type EnrollmentNotifier interface {
	SendWelcome(to, studentName, studentCode string) error
}

// Worker consumes lead events and reacts to conversions. Everything
// else is acked and ignored; only lead.converted has a side effect.
type Worker struct {
	Channel  *amqp.Channel
	Notifier EnrollmentNotifier
}

func NewWorker(ch *amqp.Channel, notifier EnrollmentNotifier) *Worker {
	return &Worker{
		Channel:  ch,
		Notifier: notifier,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack; manual ack keeps failed sends on the queue
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		slog.Error("failed to register queue consumer", "queue", queueName, "error", err)
		return
	}

	slog.Info("enrollment worker waiting on queue", "queue", queueName)

	for d := range msgs {
		var event LeadEvent
		if err := json.Unmarshal(d.Body, &event); err != nil {
			slog.Error("malformed lead event, dropping", "error", err)
			// Reject without requeue so a poison message cannot block
			// the queue.
			d.Nack(false, false)
			continue
		}

		if err := w.process(event); err != nil {
			slog.Error("lead event processing failed", "event", event.EventType, "lead_id", event.LeadID, "error", err)
			d.Nack(false, false)
			continue
		}

		d.Ack(false)
	}
}

func (w *Worker) process(event LeadEvent) error {
	if event.EventType != EventLeadConverted {
		return nil
	}

	if w.Notifier == nil || event.Email == "" {
		slog.Info("conversion without notification", "lead_id", event.LeadID, "student_code", event.StudentCode)
		return nil
	}

	return w.Notifier.SendWelcome(event.Email, event.StudentName, event.StudentCode)
}
