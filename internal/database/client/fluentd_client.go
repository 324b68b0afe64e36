package client

import (
	"context"
	"time"

	"packetlog/config"

	"github.com/fluent/fluent-logger-golang/fluent"
	"go.uber.org/zap"
)

// Client is what repositories need from a Fluentd forwarder.
type Client interface {
	Post(ctx context.Context, tag string, message any) error
	Close() error
}

// FluentdClient forwards records with fluent-logger-golang.
type FluentdClient struct {
	client    *fluent.Fluent
	tagPrefix string
}

// NewFluentdClient returns a NoopClient when no Fluentd host is configured.
func NewFluentdClient(logger *zap.Logger, conf *config.Configuration) (Client, func(), error) {
	if conf.Fluentd.Host == "" {
		logger.Info("fluentd forwarding disabled")
		return &NoopClient{}, func() {}, nil
	}
	prefix := conf.App.Name
	if conf.Fluentd.TagPrefix != "" {
		prefix = conf.Fluentd.TagPrefix
	}
	var timeout time.Duration
	if conf.Fluentd.Timeout > 0 {
		timeout = time.Duration(conf.Fluentd.Timeout) * time.Millisecond
	}

	f, err := fluent.New(fluent.Config{
		FluentHost: conf.Fluentd.Host,
		FluentPort: conf.Fluentd.Port,
		Timeout:    timeout,
		TagPrefix:  prefix,
		Async:      true,
	})
	if err != nil {
		return nil, nil, err
	}
	c := &FluentdClient{client: f, tagPrefix: prefix}
	cleanup := func() {
		if err := c.Close(); err != nil {
			logger.Warn("fluentd close failed", zap.Error(err))
		}
	}
	logger.Info("fluentd forwarding enabled",
		zap.String("host", conf.Fluentd.Host),
		zap.Int("port", conf.Fluentd.Port),
		zap.String("tagPrefix", prefix),
	)
	return c, cleanup, nil
}

func (c *FluentdClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Post sends message under tagPrefix.tag. The context is accepted for
// symmetry; the fluent logger has no cancellation.
func (c *FluentdClient) Post(_ context.Context, tag string, message any) error {
	return c.client.Post(tag, message)
}

// NoopClient drops every record.
type NoopClient struct{}

func (n *NoopClient) Post(context.Context, string, any) error { return nil }
func (n *NoopClient) Close() error                            { return nil }
