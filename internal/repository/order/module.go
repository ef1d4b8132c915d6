package order

import (
	"go.uber.org/fx"

	ordersvc "github.com/Additional-Code/storefront/internal/service/order"
)

// Module provides the order repository to Fx, bound to the gateway interface
// the service consumes.
var Module = fx.Provide(
	fx.Annotate(NewRepository, fx.As(new(ordersvc.Gateway))),
)
