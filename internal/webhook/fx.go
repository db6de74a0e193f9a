package webhook

import (
	"github.com/smallbiznis/billingsync/internal/config"
	"github.com/smallbiznis/billingsync/internal/webhook/domain"
	"github.com/smallbiznis/billingsync/internal/webhook/service"
	"github.com/smallbiznis/billingsync/internal/webhook/verify"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("webhook",
	fx.Provide(
		func(cfg config.Config, log *zap.Logger) domain.Verifier {
			return verify.New(cfg, log)
		},
		service.New,
	),
)
