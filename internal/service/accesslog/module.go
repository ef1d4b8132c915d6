package accesslog

import "go.uber.org/fx"

// Module provides the access-log service to Fx.
var Module = fx.Provide(NewService)
