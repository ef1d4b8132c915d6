package accesslog

import (
	"go.uber.org/fx"

	accesslogsvc "github.com/Additional-Code/storefront/internal/service/accesslog"
)

// Module provides the access-log repository to Fx, bound to the gateway
// interface the service consumes.
var Module = fx.Provide(
	fx.Annotate(NewRepository, fx.As(new(accesslogsvc.Gateway))),
)
