package accesslog

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Additional-Code/storefront/internal/dto"
	"github.com/Additional-Code/storefront/internal/entity"
	"github.com/Additional-Code/storefront/internal/presentation/http/response"
	service "github.com/Additional-Code/storefront/internal/service/accesslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/storefront/transport/http/accesslog")

// Handler exposes access-log endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an access-log Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo group.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/logs")
	g.POST("", h.record)
	g.GET("/stats", h.stats)
}

func (h *Handler) record(c echo.Context) error {
	b := response.New(c)

	ip := c.RealIP()
	userAgent := c.Request().UserAgent()

	ctx, span := httpTracer.Start(c.Request().Context(), "logs.record", trace.WithAttributes(
		attribute.String("access_log.ip", ip),
	))
	defer span.End()

	log, err := h.svc.Record(ctx, ip, userAgent)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(toDTO(log)).Build()
}

func (h *Handler) stats(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "logs.stats")
	defer span.End()

	stats, err := h.svc.Stats(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}

	items := make([]dto.AccessStatResponse, 0, len(stats))
	for _, s := range stats {
		items = append(items, dto.AccessStatResponse{IP: s.IP, Hits: s.Hits})
	}
	return b.WithData(items).Build()
}

func toDTO(log *entity.AccessLog) dto.AccessLogResponse {
	return dto.AccessLogResponse{
		ID:        log.ID,
		IP:        log.IP,
		UserAgent: log.UserAgent,
		Timestamp: log.Timestamp,
	}
}
