// Package consumer follows the booking and shift change feeds and reloads the desk when a
// change touches the selected date.
package consumer

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/md-rashed-zaman/dayboard/libs/kafkax"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/calendar"
)

const (
	TopicBookingChanged = "booking.changed.v1"
	TopicShiftChanged   = "shift.changed.v1"
)

// ChangeEvent is the payload shared by both feeds. Shift changes may name a whole month.
type ChangeEvent struct {
	Date    string `json:"date"`
	Month   string `json:"month,omitempty"`
	StaffID string `json:"staff_id,omitempty"`
}

type Reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Reloader is the part of the desk the consumer drives.
type Reloader interface {
	Selected() calendar.Date
	Reload(ctx context.Context) error
}

type Config struct {
	Brokers string
	GroupID string
	Topics  []string
}

type Consumer struct {
	reader Reader
	desk   Reloader
	logger *slog.Logger
	retry  time.Duration
}

func New(logger *slog.Logger, desk Reloader, cfg Config) *Consumer {
	topics := cfg.Topics
	if len(topics) == 0 {
		topics = []string{TopicBookingChanged, TopicShiftChanged}
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     kafkax.SplitBrokers(cfg.Brokers),
		GroupID:     cfg.GroupID,
		GroupTopics: topics,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
	return NewWithReader(logger, desk, reader)
}

func NewWithReader(logger *slog.Logger, desk Reloader, reader Reader) *Consumer {
	return &Consumer{reader: reader, desk: desk, logger: logger, retry: time.Second}
}

func (c *Consumer) Run(ctx context.Context) {
	defer c.reader.Close()

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("kafka read error", "err", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.retry):
			}
			continue
		}
		c.handle(ctx, msg)
	}
}

// handle reports whether msg caused a reload.
func (c *Consumer) handle(ctx context.Context, msg kafka.Message) bool {
	ctxMsg := kafkax.ExtractTraceContext(ctx, msg)
	ctxSpan, span := otel.Tracer("kafka").Start(ctxMsg, "kafka.consume",
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", msg.Topic),
		),
	)
	defer span.End()

	meta := kafkax.ExtractEventMeta(msg)
	var ev ChangeEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		c.logger.Warn("invalid change event", "err", err, "event_id", meta.EventID, "event_type", meta.EventType)
		return false
	}

	selected := c.desk.Selected()
	if !Affects(selected, msg.Topic, ev) {
		c.logger.Debug("change event ignored", "event_id", meta.EventID, "selected", selected.String())
		return false
	}
	if err := c.desk.Reload(ctxSpan); err != nil {
		c.logger.Error("board reload failed", "err", err, "event_id", meta.EventID)
		span.RecordError(err)
		span.SetStatus(codes.Error, "reload failed")
		return false
	}
	c.logger.Info("board reloaded", "event_id", meta.EventID, "event_type", meta.EventType, "date", selected.String())
	return true
}

// Affects reports whether ev could change the board of selected. Booking changes must name
// the date; shift changes match on the month because shifts load a month at a time.
func Affects(selected calendar.Date, topic string, ev ChangeEvent) bool {
	var date calendar.Date
	if ev.Date != "" {
		d, err := calendar.Parse(ev.Date)
		if err != nil {
			return false
		}
		date = d
	}
	if isShiftTopic(topic) {
		if ev.Month != "" {
			return ev.Month == calendar.MonthOf(selected).String()
		}
		return !date.IsZero() && calendar.MonthOf(date) == calendar.MonthOf(selected)
	}
	return !date.IsZero() && date == selected
}

func isShiftTopic(topic string) bool {
	return strings.HasPrefix(topic, "shift.")
}
