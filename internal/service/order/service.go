package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/storefront/internal/cache"
	"github.com/Additional-Code/storefront/internal/config"
	"github.com/Additional-Code/storefront/internal/entity"
	"github.com/Additional-Code/storefront/internal/messaging"
	"github.com/Additional-Code/storefront/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/storefront/service/order")

// Gateway is the narrow persistence surface the service consumes. The bun
// repository is the production implementation.
type Gateway interface {
	Insert(ctx context.Context, order *entity.Order) error
	List(ctx context.Context) ([]entity.Order, error)
	GetByID(ctx context.Context, id int64) (*entity.Order, error)
	Update(ctx context.Context, id int64, patch entity.OrderPatch) (*entity.Order, error)
	Delete(ctx context.Context, id int64) (*entity.Order, error)
}

// CreateInput carries the fields needed to create an order.
type CreateInput struct {
	Product string
	Price   float64
}

// Service encapsulates business logic around orders.
type Service struct {
	gateway   Gateway
	cache     cache.Store
	cacheTTL  time.Duration
	logger    *zap.Logger
	publisher messaging.Client
	messaging messagingConfig
}

// messagingConfig contains messaging specific knobs we care about.
type messagingConfig struct {
	enabled bool
	topic   string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Gateway   Gateway
	Cache     cache.Store
	Config    config.Config
	Logger    *zap.Logger
	Publisher messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		gateway:   p.Gateway,
		cache:     p.Cache,
		cacheTTL:  p.Config.Cache.DefaultTTL,
		logger:    p.Logger,
		publisher: p.Publisher,
		messaging: messagingConfig{
			enabled: p.Config.Messaging.Enabled,
			topic:   p.Config.Messaging.Kafka.Topic,
		},
	}
}

// Create validates input, persists a new order, and publishes the created
// event. Timestamps are set here so created_at always equals updated_at on a
// fresh record.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Order, error) {
	if err := validateProduct(in.Product); err != nil {
		return nil, err
	}
	if err := validatePrice(in.Price); err != nil {
		return nil, err
	}

	ctx, span := serviceTracer.Start(ctx, "OrderService.Create", trace.WithAttributes(attribute.String("order.product", in.Product)))
	defer span.End()

	now := time.Now().UTC()
	order := &entity.Order{
		Product:   strings.TrimSpace(in.Product),
		Price:     in.Price,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.gateway.Insert(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "gateway error")
		return nil, errorbank.Internal("failed to create order", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, order); err != nil {
		if s.logger != nil {
			s.logger.Warn("orders cache write failed", zap.Int64("id", order.ID), zap.Error(err))
		}
	}

	s.publishOrderCreated(ctx, order)
	return order, nil
}

// List returns every order, most recent first.
func (s *Service) List(ctx context.Context) ([]entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.List")
	defer span.End()

	orders, err := s.gateway.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "gateway error")
		return nil, errorbank.Internal("failed to list orders", errorbank.WithCause(err))
	}
	return orders, nil
}

// Get retrieves an order by id, consulting cache when available.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	if order, err := s.getFromCache(ctx, id); err == nil {
		return order, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		if s.logger != nil {
			s.logger.Warn("orders cache read failed", zap.Int64("id", id), zap.Error(err))
		}
	}

	order, err := s.gateway.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrOrderNotFound) {
			return nil, notFound(id)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "gateway error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, order); err != nil {
		if s.logger != nil {
			s.logger.Warn("orders cache write failed", zap.Int64("id", id), zap.Error(err))
		}
	}

	return order, nil
}

// Update applies the supplied fields to an existing order. Supplied fields
// obey the same constraints as on create.
func (s *Service) Update(ctx context.Context, id int64, patch entity.OrderPatch) (*entity.Order, error) {
	if patch.Product != nil {
		trimmed := strings.TrimSpace(*patch.Product)
		if err := validateProduct(trimmed); err != nil {
			return nil, err
		}
		// Store the same normalized form Create does.
		patch.Product = &trimmed
	}
	if patch.Price != nil {
		if err := validatePrice(*patch.Price); err != nil {
			return nil, err
		}
	}

	ctx, span := serviceTracer.Start(ctx, "OrderService.Update", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := s.gateway.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, entity.ErrOrderNotFound) {
			return nil, notFound(id)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "gateway error")
		return nil, errorbank.Internal("failed to update order", errorbank.WithCause(err))
	}

	// Stale cache entries would serve the pre-update record.
	s.dropFromCache(ctx, id)
	return order, nil
}

// Remove deletes an order and returns the deleted record.
func (s *Service) Remove(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Remove", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := s.gateway.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrOrderNotFound) {
			return nil, notFound(id)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "gateway error")
		return nil, errorbank.Internal("failed to delete order", errorbank.WithCause(err))
	}

	s.dropFromCache(ctx, id)
	return order, nil
}

func validateProduct(product string) error {
	if strings.TrimSpace(product) == "" {
		return errorbank.BadRequest("product is required")
	}
	return nil
}

func validatePrice(price float64) error {
	if price <= 0 {
		return errorbank.BadRequest("price must be a positive number")
	}
	return nil
}

func notFound(id int64) *errorbank.AppError {
	return errorbank.NotFound(fmt.Sprintf("order %d not found", id), errorbank.WithDetail("id", id))
}

func (s *Service) publishOrderCreated(ctx context.Context, order *entity.Order) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	event := OrderCreatedEvent{
		ID:        order.ID,
		Product:   order.Product,
		Price:     order.Price,
		CreatedAt: order.CreatedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("marshal order created", zap.Error(err))
		}
		return
	}
	if err := s.publisher.Publish(ctx, []byte(fmt.Sprintf("order-%d", order.ID)), payload); err != nil {
		if s.logger != nil {
			s.logger.Error("publish order created", zap.Error(err))
		}
	}
}

func (s *Service) cacheKey(id int64) string {
	return fmt.Sprintf("orders:%d", id)
}

func (s *Service) getFromCache(ctx context.Context, id int64) (*entity.Order, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	bytes, err := s.cache.Get(ctx, s.cacheKey(id))
	if err != nil {
		return nil, err
	}
	var order entity.Order
	if err := json.Unmarshal(bytes, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) storeInCache(ctx context.Context, order *entity.Order) error {
	if s.cache == nil || order == nil {
		return nil
	}
	bytes, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, s.cacheKey(order.ID), bytes, s.cacheTTL)
}

func (s *Service) dropFromCache(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.cacheKey(id)); err != nil {
		if s.logger != nil {
			s.logger.Warn("orders cache invalidation failed", zap.Int64("id", id), zap.Error(err))
		}
	}
}

// OrderCreatedEvent is emitted when a new order is persisted.
type OrderCreatedEvent struct {
	ID        int64     `json:"id"`
	Product   string    `json:"product"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}
