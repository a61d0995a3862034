package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/psds-microservice/ticket-api/internal/database"
	"github.com/psds-microservice/ticket-api/internal/errs"
	"github.com/psds-microservice/ticket-api/internal/model"
	"gorm.io/datatypes"
)

const ticketColumns = "id, data, title, priority, status, user_name, feedbacks"

const (
	listQuery   = "SELECT " + ticketColumns + " FROM tickets ORDER BY id DESC"
	getQuery    = "SELECT " + ticketColumns + " FROM tickets WHERE id = ?"
	insertQuery = "INSERT INTO tickets (data, title, priority, status, user_name, feedbacks) VALUES (?, ?, ?, ?, ?, ?) RETURNING " + ticketColumns
	patchQuery  = "UPDATE tickets SET title = COALESCE(?, title), priority = COALESCE(?, priority), status = COALESCE(?, status) WHERE id = ? RETURNING " + ticketColumns
	deleteQuery = "DELETE FROM tickets WHERE id = ? RETURNING " + ticketColumns
)

// TicketServicer is what the HTTP handlers depend on.
type TicketServicer interface {
	List(ctx context.Context) ([]model.Ticket, error)
	GetByID(ctx context.Context, id int64) (*model.Ticket, error)
	Create(ctx context.Context, in CreateInput) (*model.Ticket, error)
	Patch(ctx context.Context, id int64, in PatchInput) (*model.Ticket, error)
	Delete(ctx context.Context, id int64) (*model.Ticket, error)
}

// CreateInput carries an already validated create request. Nil Data and a blank
// Status are replaced by their defaults.
type CreateInput struct {
	Data      *time.Time
	Title     string
	Priority  string
	Status    string
	UserName  *string
	Feedbacks datatypes.JSON
}

// PatchInput holds the updatable fields. A nil field keeps the stored value.
type PatchInput struct {
	Title    *string
	Priority *string
	Status   *string
}

type TicketService struct {
	store database.Store
	now   func() time.Time
}

func NewTicketService(store database.Store) *TicketService {
	return &TicketService{store: store, now: time.Now}
}

func (s *TicketService) List(ctx context.Context) ([]model.Ticket, error) {
	items := []model.Ticket{}
	if err := s.store.Execute(ctx, &items, listQuery); err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return items, nil
}

func (s *TicketService) GetByID(ctx context.Context, id int64) (*model.Ticket, error) {
	return s.one(ctx, "get ticket", getQuery, id)
}

func (s *TicketService) Create(ctx context.Context, in CreateInput) (*model.Ticket, error) {
	data := s.now()
	if in.Data != nil {
		data = *in.Data
	}
	status := in.Status
	if strings.TrimSpace(status) == "" {
		status = model.StatusReceived
	}
	feedbacks := in.Feedbacks
	if len(feedbacks) == 0 {
		feedbacks = datatypes.JSON("[]")
	}
	var rows []model.Ticket
	err := s.store.Execute(ctx, &rows, insertQuery,
		data, in.Title, in.Priority, status, nullable(in.UserName), feedbacks)
	if err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("create ticket: insert returned no row")
	}
	return &rows[0], nil
}

func (s *TicketService) Patch(ctx context.Context, id int64, in PatchInput) (*model.Ticket, error) {
	return s.one(ctx, "patch ticket", patchQuery,
		nullable(in.Title), nullable(in.Priority), nullable(in.Status), id)
}

func (s *TicketService) Delete(ctx context.Context, id int64) (*model.Ticket, error) {
	return s.one(ctx, "delete ticket", deleteQuery, id)
}

// one runs a statement addressed to a single id; zero rows means the id does not exist.
func (s *TicketService) one(ctx context.Context, op, query string, args ...any) (*model.Ticket, error) {
	var rows []model.Ticket
	if err := s.store.Execute(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(rows) == 0 {
		return nil, errs.ErrTicketNotFound
	}
	return &rows[0], nil
}

// nullable binds a nil pointer as SQL NULL rather than a typed nil.
func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
