package http

import (
	"go.uber.org/fx"

	accesslogtransport "github.com/Additional-Code/storefront/internal/transport/http/accesslog"
	ordertransport "github.com/Additional-Code/storefront/internal/transport/http/order"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	ordertransport.Module,
	accesslogtransport.Module,
)
