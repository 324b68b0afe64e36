//go:build wireinject
// +build wireinject

package main

import (
	"packetlog/config"
	"packetlog/internal/command"
	commandHandler "packetlog/internal/command/handler"
	"packetlog/internal/cron"
	"packetlog/internal/database"
	"packetlog/internal/handler"
	"packetlog/internal/ingest"
	"packetlog/internal/middleware"
	"packetlog/internal/router"
	"packetlog/internal/service"
	"packetlog/internal/telemetry"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// wireApp init application.
func wireApp(*config.Configuration, *zap.Logger) (*App, func(), error) {
	panic(
		wire.Build(
			database.ProviderSet,
			service.ProviderSet,
			handler.ProviderSet,
			middleware.ProviderSet,
			router.ProviderSet,
			cron.ProviderSet,
			telemetry.ProviderSet,
			newHttpServer,
			newApp,
		),
	)
}

// wireCommand init the database-backed commands.
func wireCommand(*config.Configuration, *zap.Logger) (*command.Command, func(), error) {
	panic(wire.Build(
		database.ProviderSet,
		service.ProviderSet,
		telemetry.ProviderSet,
		command.ProviderSet,
	))
}

// wireFields init the fields command.
func wireFields(*config.Configuration) (*commandHandler.FieldsHandler, error) {
	panic(wire.Build(ingest.NewSchema, commandHandler.NewFieldsHandler))
}
