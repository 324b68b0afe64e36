package repository

import (
	"context"
	"encoding/json"
	"time"

	"packetlog/config"
	"packetlog/internal/core"
	"packetlog/internal/database/client"
	"packetlog/internal/database/fluentd/model"
)

const loggedAtLayout = "2006-01-02 15:04:05.999999 UTC"

// LogRepository 負責發送 Request/Ingest Log 到 Fluentd
type LogRepository struct {
	fluentdClient client.Client
	version       string
}

func NewLogRepository(conf *config.Configuration, fluentdClient client.Client) *LogRepository {
	version := "1.0.0"
	if conf.App.Version != "" {
		version = conf.App.Version
	}
	return &LogRepository{fluentdClient: fluentdClient, version: version}
}

func (repository *LogRepository) LogRequest(ctx context.Context, req model.RequestLog) error {
	if req.LoggedAt == "" {
		req.LoggedAt = time.Now().UTC().Format(loggedAtLayout)
	}
	if req.Version == "" {
		req.Version = repository.version
	}
	return repository.post(ctx, core.FluentdRequest, req)
}

func (repository *LogRepository) LogIngest(ctx context.Context, ingest model.IngestLog) error {
	if ingest.LoggedAt == "" {
		ingest.LoggedAt = time.Now().UTC().Format(loggedAtLayout)
	}
	if ingest.Version == "" {
		ingest.Version = repository.version
	}
	return repository.post(ctx, core.FluentdIngest, ingest)
}

// post flattens v into a map so fluentd receives plain msgpack keys.
func (repository *LogRepository) post(ctx context.Context, tag core.FluentdSubTag, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var message map[string]any
	if err := json.Unmarshal(b, &message); err != nil {
		return err
	}
	return repository.fluentdClient.Post(ctx, string(tag), message)
}
