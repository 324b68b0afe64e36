package service

import (
	"packetlog/internal/ingest"

	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	ingest.NewSchema,
	NewLogService,
	NewHealthService,
)
