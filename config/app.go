package config

type App struct {
	// production / test / development
	Env string `mapstructure:"ENV" json:"env" yaml:"env"`
	// HTTP listen port
	Port           uint32 `mapstructure:"PORT" json:"port" yaml:"port" validate:"required"`
	Name           string `mapstructure:"NAME" json:"name" yaml:"name" validate:"required"`
	Version        string `mapstructure:"VERSION" json:"version" yaml:"version"`
	SwaggerEnabled bool   `mapstructure:"SWAGGER_ENABLED" json:"swagger_enabled" yaml:"swagger_enabled"`
}
