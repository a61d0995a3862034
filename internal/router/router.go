package router

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/psds-microservice/helpy/paths"
	"github.com/psds-microservice/ticket-api/api"
	"github.com/psds-microservice/ticket-api/internal/handler"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func New(ticketHandler *handler.TicketHandler, ping func(ctx context.Context) error, log *slog.Logger) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))
	r.GET(paths.PathHealth, handler.Health)
	r.GET(paths.PathReady, handler.Ready(ping))
	r.GET(paths.PathSwagger, func(c *gin.Context) { c.Redirect(http.StatusFound, paths.PathSwagger+"/") })
	r.GET(paths.PathSwagger+"/*any", swaggerUI())

	tickets := r.Group("/tickets")
	{
		tickets.GET("", ticketHandler.List)
		tickets.POST("", ticketHandler.Create)
		tickets.GET("/:id", ticketHandler.Get)
		tickets.PATCH("/:id", ticketHandler.Patch)
		tickets.DELETE("/:id", ticketHandler.Delete)
	}

	return r
}

// swaggerUI serves the embedded OpenAPI document and the swagger-ui assets around it.
func swaggerUI() gin.HandlerFunc {
	ui := ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL(paths.PathSwagger+"/openapi.json"))
	return func(c *gin.Context) {
		switch strings.TrimPrefix(c.Param("any"), "/") {
		case "openapi.json":
			c.Data(http.StatusOK, "application/json", api.OpenAPISpec)
			return
		case "":
			index := paths.PathSwagger + "/index.html"
			c.Request.URL.Path, c.Request.RequestURI = index, index
		}
		ui(c)
	}
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}
