// Package events turns board selections into Kafka messages for the dialogs that consume them.
package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/md-rashed-zaman/dayboard/libs/kafkax"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/board"
)

const (
	TopicSlotSelected    = "board.slot.selected.v1"
	TopicBookingSelected = "board.booking.selected.v1"
)

// Writer is the subset of *kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publisher is a board.Emitter writing one message per selection, keyed by resource or
// booking so a consumer sees a resource's clicks in order.
type Publisher struct {
	writer Writer
	logger *slog.Logger
	newID  func() string
}

func NewPublisher(writer Writer, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{writer: writer, logger: logger, newID: uuid.NewString}
}

// NewKafkaWriter builds the writer used in production. Topics are set per message.
func NewKafkaWriter(brokers string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(kafkax.SplitBrokers(brokers)...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}

func (p *Publisher) SlotSelected(ctx context.Context, ev board.SlotSelected) error {
	return p.publish(ctx, TopicSlotSelected, ev.ResourceID, ev)
}

func (p *Publisher) BookingSelected(ctx context.Context, ev board.BookingSelected) error {
	return p.publish(ctx, TopicBookingSelected, ev.BookingID, ev)
}

func (p *Publisher) publish(ctx context.Context, topic, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	eventID := p.newID()
	msg := kafka.Message{
		Topic:   topic,
		Key:     []byte(key),
		Value:   value,
		Headers: kafkax.EventHeaders(kafkax.EventMeta{EventID: eventID, EventType: topic}),
	}
	msg.Headers = kafkax.InjectTraceHeaders(ctx, msg.Headers)
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return err
	}
	p.logger.Info("selection published", "topic", topic, "event_id", eventID, "key", key)
	return nil
}

// LogEmitter logs selections instead of publishing them; used when no brokers are configured.
type LogEmitter struct {
	Logger *slog.Logger
}

func (e LogEmitter) SlotSelected(_ context.Context, ev board.SlotSelected) error {
	e.Logger.Info("slot selected",
		"date", ev.Date.String(), "axis", string(ev.Axis), "resource_id", ev.ResourceID, "slot", ev.Slot)
	return nil
}

func (e LogEmitter) BookingSelected(_ context.Context, ev board.BookingSelected) error {
	e.Logger.Info("booking selected",
		"date", ev.Date.String(), "booking_id", ev.BookingID, "status", string(ev.Status))
	return nil
}
