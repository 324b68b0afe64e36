package config

type Ingest struct {
	// dual (seq + kv_fields) or flat (single direction)
	Schema       string `mapstructure:"SCHEMA" json:"schema" yaml:"schema" validate:"required,oneof=dual flat"`
	Table        string `mapstructure:"TABLE" json:"table" yaml:"table" validate:"required,sqlident"`
	MaxBodyBytes int64  `mapstructure:"MAX_BODY_BYTES" json:"max_body_bytes" yaml:"max_body_bytes" validate:"gte=0"`
}
