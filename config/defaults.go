package config

// Defaults are applied to viper before the environment and config file are read.
var Defaults = map[string]any{
	"APP__ENV":                    "development",
	"APP__PORT":                   10000,
	"APP__NAME":                   "packetlog",
	"LOG__LEVEL":                  "info",
	"DATABASE__DRIVER":            "postgres",
	"DATABASE__MAX_OPEN_CONNS":    10,
	"DATABASE__MAX_IDLE_CONNS":    5,
	"DATABASE__CONN_MAX_LIFETIME": 300,
	"DATABASE__HEALTH_CHECK_SPEC": "*/15 * * * * *",
	"INGEST__SCHEMA":              "dual",
	"INGEST__TABLE":               "logs",
	"INGEST__MAX_BODY_BYTES":      10 << 20,
}
