package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/psds-microservice/ticket-api/internal/model"
	"github.com/segmentio/kafka-go"
)

const (
	EventTicketCreated = "ticket.created"
	EventTicketUpdated = "ticket.updated"
	EventTicketDeleted = "ticket.deleted"
)

// TicketEventProducer publishes ticket lifecycle events. Tests swap in a fake.
type TicketEventProducer interface {
	ProduceTicketEvent(ctx context.Context, event string, t *model.Ticket)
}

type ticketEvent struct {
	Event  string        `json:"event"`
	Ticket *model.Ticket `json:"ticket"`
	SentAt time.Time     `json:"sent_at"`
}

// Producer writes ticket events to a Kafka topic. Failures are logged and dropped.
type Producer struct {
	writer *kafka.Writer
	topic  string
	log    *slog.Logger
}

// NewProducer returns a producer; with no brokers or no topic every call is a no-op.
func NewProducer(brokers []string, topic string, log *slog.Logger) *Producer {
	if log == nil {
		log = slog.Default()
	}
	if len(brokers) == 0 || topic == "" {
		return &Producer{log: log}
	}
	return &Producer{
		topic: topic,
		log:   log,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

func (p *Producer) Enabled() bool { return p.writer != nil }

func (p *Producer) ProduceTicketEvent(ctx context.Context, event string, t *model.Ticket) {
	if p.writer == nil || t == nil {
		return
	}
	msg, err := encodeEvent(event, t, time.Now())
	if err != nil {
		p.log.Error("kafka: marshal ticket event", "event", event, "ticket_id", t.ID, "error", err)
		return
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("kafka: write ticket event", "event", event, "ticket_id", t.ID, "topic", p.topic, "error", err)
	}
}

// Close flushes and closes the writer.
func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// encodeEvent keys messages by ticket id so events for one ticket stay ordered in a partition.
func encodeEvent(event string, t *model.Ticket, now time.Time) (kafka.Message, error) {
	body, err := json.Marshal(ticketEvent{Event: event, Ticket: t, SentAt: now.UTC()})
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(t.ID, 10)),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(event)},
		},
	}, nil
}

// ParseBrokers splits "host1:9092,host2:9092" into a slice.
func ParseBrokers(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
