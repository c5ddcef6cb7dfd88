package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventLeadCreated       = "lead.created"
	EventLeadStatusChanged = "lead.status_changed"
	EventLeadConverted     = "lead.converted"
)

// LeadEvent is the message fanned out after lifecycle mutations.
// Converted events carry the enrolled student so downstream consumers
// (welcome mail, academic onboarding) need no extra lookup.
type LeadEvent struct {
	EventType  string `json:"event_type"`
	LeadID     string `json:"lead_id"`
	FromStatus string `json:"from_status,omitempty"`
	ToStatus   string `json:"to_status"`
	ActorID    string `json:"actor_id"`

	StudentID     string `json:"student_id,omitempty"`
	StudentCode   string `json:"student_code,omitempty"`
	StudentName   string `json:"student_name,omitempty"`
	Email         string `json:"email,omitempty"`
	ContactNumber string `json:"contact_number,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{
		Conn: conn,
		Ch:   ch,
	}
}

func (p *RabbitMQProducer) PublishLeadEvent(ctx context.Context, event LeadEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal lead event: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)

	if err != nil {
		return fmt.Errorf("failed to publish lead event: %w", err)
	}

	return nil
}
