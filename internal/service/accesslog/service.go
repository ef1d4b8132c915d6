package accesslog

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/storefront/internal/entity"
	"github.com/Additional-Code/storefront/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/storefront/service/accesslog")

// Gateway is the persistence surface for access-log entries.
type Gateway interface {
	Insert(ctx context.Context, log *entity.AccessLog) error
	CountByIP(ctx context.Context) ([]entity.AccessStat, error)
}

// Service records inbound requests and reports traffic aggregates.
type Service struct {
	gateway Gateway
	logger  *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Gateway Gateway
	Logger  *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		gateway: p.Gateway,
		logger:  p.Logger,
	}
}

// Record stores one access-log entry for the given client.
func (s *Service) Record(ctx context.Context, ip, userAgent string) (*entity.AccessLog, error) {
	if strings.TrimSpace(ip) == "" {
		return nil, errorbank.BadRequest("client ip is required")
	}

	ctx, span := serviceTracer.Start(ctx, "AccessLogService.Record", trace.WithAttributes(attribute.String("access_log.ip", ip)))
	defer span.End()

	log := &entity.AccessLog{
		IP:        ip,
		UserAgent: userAgent,
		Timestamp: time.Now().UTC(),
	}
	if err := s.gateway.Insert(ctx, log); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "gateway error")
		return nil, errorbank.Internal("failed to record access log", errorbank.WithCause(err))
	}

	if s.logger != nil {
		s.logger.Debug("access recorded", zap.String("ip", ip), zap.String("user_agent", userAgent))
	}
	return log, nil
}

// Stats returns hit counts grouped by client IP.
func (s *Service) Stats(ctx context.Context) ([]entity.AccessStat, error) {
	ctx, span := serviceTracer.Start(ctx, "AccessLogService.Stats")
	defer span.End()

	stats, err := s.gateway.CountByIP(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "gateway error")
		return nil, errorbank.Internal("failed to load access stats", errorbank.WithCause(err))
	}
	return stats, nil
}
