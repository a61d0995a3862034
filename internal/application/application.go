package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/psds-microservice/ticket-api/internal/config"
	"github.com/psds-microservice/ticket-api/internal/database"
	"github.com/psds-microservice/ticket-api/internal/handler"
	"github.com/psds-microservice/ticket-api/internal/kafka"
	"github.com/psds-microservice/ticket-api/internal/router"
	"github.com/psds-microservice/ticket-api/internal/service"
)

// API is the HTTP application (api mode).
type API struct {
	cfg      *config.Config
	log      *slog.Logger
	httpSrv  *http.Server
	producer *kafka.Producer
	tickets  *handler.TicketHandler
	closeDB  func() error
}

// NewAPI applies the schema, opens the pool and builds the HTTP server.
func NewAPI(cfg *config.Config, log *slog.Logger) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.DSN(), cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	store := database.NewGormStore(db)
	producer := kafka.NewProducer(kafka.ParseBrokers(cfg.KafkaBrokers), cfg.KafkaTopicTicket, log)
	var events kafka.TicketEventProducer
	if producer.Enabled() {
		events = producer
	}
	ticketHandler := handler.NewTicketHandler(service.NewTicketService(store), events, log)

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.New(ticketHandler, store.Ping, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &API{
		cfg:      cfg,
		log:      log,
		httpSrv:  httpSrv,
		producer: producer,
		tickets:  ticketHandler,
		closeDB:  sqlDB.Close,
	}, nil
}

// Run serves HTTP and blocks until ctx is cancelled, then shuts down gracefully.
func (a *API) Run(ctx context.Context) error {
	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	a.log.Info("HTTP server listening",
		"addr", a.httpSrv.Addr,
		"tickets", base+"/tickets",
		"swagger", base+"/swagger",
		"health", base+"/health",
		"kafka", a.producer.Enabled(),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	a.tickets.Wait()
	if err := a.producer.Close(); err != nil {
		a.log.Warn("kafka close", "error", err)
	}
	if err := a.closeDB(); err != nil {
		a.log.Warn("database close", "error", err)
	}
	if serveErr != nil {
		return fmt.Errorf("http: %w", serveErr)
	}
	return nil
}
