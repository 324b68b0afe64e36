package config

type Database struct {
	// postgres or sqlite
	Driver string `mapstructure:"DRIVER" json:"driver" yaml:"driver" validate:"required,oneof=postgres sqlite"`
	// Connection string; a file path when Driver is sqlite.
	URL             string `mapstructure:"URL" json:"url" yaml:"url" validate:"required"`
	MaxOpenConns    int    `mapstructure:"MAX_OPEN_CONNS" json:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"MAX_IDLE_CONNS" json:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"CONN_MAX_LIFETIME" json:"conn_max_lifetime" yaml:"conn_max_lifetime"` // seconds
	// cron spec (with seconds) of the readiness ping
	HealthCheckSpec string `mapstructure:"HEALTH_CHECK_SPEC" json:"health_check_spec" yaml:"health_check_spec"`
}
