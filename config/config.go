package config

type Configuration struct {
	App       App             `mapstructure:"APP" json:"app" yaml:"app" validate:"required"`
	Log       Log             `mapstructure:"LOG" json:"log" yaml:"log"`
	Database  Database        `mapstructure:"DATABASE" json:"database" yaml:"database" validate:"required"`
	Ingest    Ingest          `mapstructure:"INGEST" json:"ingest" yaml:"ingest" validate:"required"`
	Telemetry TelemetryConfig `mapstructure:"TELEMETRY" yaml:"telemetry"`
	Fluentd   Fluentd         `mapstructure:"FLUENTD" yaml:"fluentd"`
}
