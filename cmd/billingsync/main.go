package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/billingsync/internal/config"
	"github.com/smallbiznis/billingsync/internal/gateway"
	"github.com/smallbiznis/billingsync/internal/migration"
	"github.com/smallbiznis/billingsync/internal/observability"
	"github.com/smallbiznis/billingsync/internal/server"
	"github.com/smallbiznis/billingsync/internal/store"
	"github.com/smallbiznis/billingsync/internal/webhook"
	"github.com/smallbiznis/billingsync/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,

		store.Module,
		gateway.Module,
		webhook.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
