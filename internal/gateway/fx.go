package gateway

import (
	"github.com/smallbiznis/billingsync/internal/config"
	"github.com/smallbiznis/billingsync/internal/gateway/domain"
	"github.com/smallbiznis/billingsync/internal/gateway/stripeclient"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("gateway",
	fx.Provide(func(cfg config.Config, log *zap.Logger) domain.InvoiceFetcher {
		return stripeclient.New(cfg.StripeSecretKey, log)
	}),
)
