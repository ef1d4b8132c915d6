package accesslog

import (
	"context"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/storefront/internal/database"
	"github.com/Additional-Code/storefront/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/storefront/repository/accesslog")

// Repository persists access-log entries and serves their aggregation.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// Insert appends a new access-log entry.
func (r *Repository) Insert(ctx context.Context, log *entity.AccessLog) error {
	if log == nil {
		return errors.New("nil access log")
	}
	ctx, span := repoTracer.Start(ctx, "AccessLogRepository.Insert", trace.WithAttributes(attribute.String("access_log.ip", log.IP)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(log).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// CountByIP returns hit counts grouped by client IP, busiest first.
func (r *Repository) CountByIP(ctx context.Context) ([]entity.AccessStat, error) {
	ctx, span := repoTracer.Start(ctx, "AccessLogRepository.CountByIP")
	defer span.End()

	stats := make([]entity.AccessStat, 0)
	err := r.reader.NewSelect().
		Model((*entity.AccessLog)(nil)).
		ColumnExpr("ip").
		ColumnExpr("count(*) AS hits").
		GroupExpr("ip").
		OrderExpr("hits DESC").
		Scan(ctx, &stats)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return stats, nil
}
