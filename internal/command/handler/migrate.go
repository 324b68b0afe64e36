package handler

import (
	"context"
	"time"

	"packetlog/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type MigrateHandler struct {
	logger     *zap.Logger
	logService *service.LogService
}

func NewMigrateHandler(logger *zap.Logger, logService *service.LogService) *MigrateHandler {
	return &MigrateHandler{
		logger:     logger,
		logService: logService,
	}
}

// Migrate creates the log table of the active schema and exits.
func (handler *MigrateHandler) Migrate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	if err := handler.logService.EnsureTable(ctx); err != nil {
		handler.logger.Error("migrate failed", zap.Error(err))
		return err
	}
	table := handler.logService.Schema().Table()
	cmd.Printf("table %q ready (%s schema, %d data columns)\n",
		table.Name, handler.logService.Schema().Name, len(table.Columns))
	return nil
}
