package config

import "go.uber.org/fx"

// Module wires application configuration. Validation runs at startup so a
// misconfigured storage backend fails the process instead of every request.
var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Invoke(func(cfg Config) error {
		return cfg.Validate()
	}),
)
