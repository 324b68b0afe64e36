package database

import (
	client "packetlog/internal/database/client"
	fluentdRepo "packetlog/internal/database/fluentd/repository"
	sqlRepo "packetlog/internal/database/sql/repository"

	"github.com/google/wire"
)

// ProviderSet 定義所有 DB Client 的依賴
var ProviderSet = wire.NewSet(
	client.NewSQLClient,
	client.NewFluentdClient,
	sqlRepo.ProviderSet,
	fluentdRepo.ProviderSet,
)
