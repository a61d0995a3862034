package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/psds-microservice/ticket-api/internal/errs"
	"github.com/psds-microservice/ticket-api/internal/kafka"
	"github.com/psds-microservice/ticket-api/internal/model"
	"github.com/psds-microservice/ticket-api/internal/service"
)

const (
	msgNotFound    = "Ticket não encontrado"
	msgInvalidBody = "corpo da requisição inválido"
	msgDeleted     = "Ticket deletado com sucesso"
)

type TicketHandler struct {
	svc      service.TicketServicer
	producer kafka.TicketEventProducer
	log      *slog.Logger
	inflight sync.WaitGroup
}

// NewTicketHandler wires the ticket resource. producer may be nil.
func NewTicketHandler(svc service.TicketServicer, producer kafka.TicketEventProducer, log *slog.Logger) *TicketHandler {
	if log == nil {
		log = slog.Default()
	}
	return &TicketHandler{svc: svc, producer: producer, log: log}
}

type createTicketRequest struct {
	Data      *time.Time      `json:"data"`
	Title     string          `json:"title" binding:"required"`
	Priority  string          `json:"priority" binding:"required"`
	Status    string          `json:"status"`
	UserName  *string         `json:"user_name"`
	Feedbacks json.RawMessage `json:"feedbacks"`
}

type patchTicketRequest struct {
	Title    *string `json:"title"`
	Priority *string `json:"priority"`
	Status   *string `json:"status"`
}

type deleteTicketResponse struct {
	Message string        `json:"message"`
	Ticket  *model.Ticket `json:"ticket"`
}

func (h *TicketHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, "Erro ao buscar tickets", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *TicketHandler) Get(c *gin.Context) {
	id, ok := h.ticketID(c, "Erro ao buscar ticket")
	if !ok {
		return
	}
	t, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.failLookup(c, "Erro ao buscar ticket", id, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TicketHandler) Create(c *gin.Context) {
	var req createTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}
	// title and priority must carry text, not just whitespace
	if strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "campo obrigatório: title"})
		return
	}
	if strings.TrimSpace(req.Priority) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "campo obrigatório: priority"})
		return
	}
	feedbacks, err := model.NormalizeFeedbacks(req.Feedbacks)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}
	t, err := h.svc.Create(c.Request.Context(), service.CreateInput{
		Data:      req.Data,
		Title:     req.Title,
		Priority:  req.Priority,
		Status:    req.Status,
		UserName:  req.UserName,
		Feedbacks: feedbacks,
	})
	if err != nil {
		h.fail(c, "Erro ao criar ticket", err)
		return
	}
	h.publish(kafka.EventTicketCreated, t)
	c.JSON(http.StatusCreated, t)
}

func (h *TicketHandler) Patch(c *gin.Context) {
	id, ok := h.ticketID(c, "Erro ao atualizar ticket")
	if !ok {
		return
	}
	var req patchTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}
	t, err := h.svc.Patch(c.Request.Context(), id, service.PatchInput{
		Title:    present(req.Title),
		Priority: present(req.Priority),
		Status:   present(req.Status),
	})
	if err != nil {
		h.failLookup(c, "Erro ao atualizar ticket", id, err)
		return
	}
	h.publish(kafka.EventTicketUpdated, t)
	c.JSON(http.StatusOK, t)
}

func (h *TicketHandler) Delete(c *gin.Context) {
	id, ok := h.ticketID(c, "Erro ao deletar ticket")
	if !ok {
		return
	}
	t, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		h.failLookup(c, "Erro ao deletar ticket", id, err)
		return
	}
	h.publish(kafka.EventTicketDeleted, t)
	c.JSON(http.StatusOK, deleteTicketResponse{Message: msgDeleted, Ticket: t})
}

// ticketID reads :id as the bigint key. Text the key type cannot hold is a
// rejected lookup and answered like any other store fault.
func (h *TicketHandler) ticketID(c *gin.Context, msg string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.log.Error(msg, "ticket_id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
		return 0, false
	}
	return id, true
}

func (h *TicketHandler) failLookup(c *gin.Context, msg string, id int64, err error) {
	if errors.Is(err, errs.ErrTicketNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
		return
	}
	h.log.Error(msg, "ticket_id", id, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

func (h *TicketHandler) fail(c *gin.Context, msg string, err error) {
	h.log.Error(msg, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

// publish sends the event in the background; the response never waits for Kafka.
func (h *TicketHandler) publish(event string, t *model.Ticket) {
	if h.producer == nil {
		return
	}
	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		h.producer.ProduceTicketEvent(ctx, event, t)
	}()
}

// Wait blocks until every event started by publish has been handed to the producer.
func (h *TicketHandler) Wait() {
	h.inflight.Wait()
}

// present treats a blank value like an omitted one so patch never stores an empty field.
func present(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

func bindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return "campo obrigatório: " + strings.ToLower(verrs[0].Field())
	}
	return msgInvalidBody
}
