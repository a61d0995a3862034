package kafka

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/psds-microservice/ticket-api/internal/model"
	"gorm.io/datatypes"
)

func TestParseBrokers(t *testing.T) {
	got := ParseBrokers(" kafka-1:9092, ,kafka-2:9092,")
	want := []string{"kafka-1:9092", "kafka-2:9092"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseBrokers = %v, want %v", got, want)
	}
	if got := ParseBrokers(""); len(got) != 0 {
		t.Fatalf("ParseBrokers(\"\") = %v, want empty", got)
	}
}

func TestProducerWithoutBrokersIsNoop(t *testing.T) {
	p := NewProducer(nil, "tickets", nil)
	if p.Enabled() {
		t.Fatal("producer without brokers must be disabled")
	}
	p.ProduceTicketEvent(context.Background(), EventTicketCreated, &model.Ticket{ID: 1})
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if NewProducer([]string{"localhost:9092"}, "", nil).Enabled() {
		t.Fatal("producer without topic must be disabled")
	}
}

func TestEncodeEvent(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	ticket := &model.Ticket{ID: 42, Title: "Erro de login", Priority: "Alta", Status: model.StatusReceived, Feedbacks: datatypes.JSON("[]")}
	msg, err := encodeEvent(EventTicketDeleted, ticket, now)
	if err != nil {
		t.Fatalf("encodeEvent: %v", err)
	}
	if string(msg.Key) != "42" {
		t.Errorf("key = %q, want 42", msg.Key)
	}
	if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != EventTicketDeleted {
		t.Errorf("headers = %+v", msg.Headers)
	}
	var decoded struct {
		Event  string `json:"event"`
		Ticket struct {
			ID        int64           `json:"id"`
			Title     string          `json:"title"`
			Feedbacks json.RawMessage `json:"feedbacks"`
		} `json:"ticket"`
	}
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Event != EventTicketDeleted || decoded.Ticket.ID != 42 || decoded.Ticket.Title != "Erro de login" {
		t.Errorf("decoded = %+v", decoded)
	}
	if string(decoded.Ticket.Feedbacks) != "[]" {
		t.Errorf("feedbacks = %s, want []", decoded.Ticket.Feedbacks)
	}
}
