package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"reflect"
	"strings"
	"syscall"
	"time"

	"packetlog/config"
	"packetlog/internal/command"
	commandHandler "packetlog/internal/command/handler"
	"packetlog/internal/log"
	"packetlog/utils/path"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	_ "packetlog/cmd/docs"
)

var (
	rootPath = path.RootPath()
	Version  string
	envPath  string
	yamlPath string
	conf     *config.Configuration
	logger   *zap.Logger
)

func configFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("config", pflag.ExitOnError)
	fs.StringVarP(&envPath, "env", "e", "", "Environment file, e.g. --env .env")
	fs.StringVarP(&yamlPath, "config", "c", "", "YAML config file, e.g. --config config.yaml")
	return fs
}

// @title        packetlog API
// @version      1.0
// @description  Packet log ingestion service
// @host         localhost:10000
// @basePath     /
func main() {
	rootCmd := &cobra.Command{
		Use:           "app",
		Short:         "packet log ingestion service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(command.Offline(cmd))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			defer logger.Sync()
			app, cleanup, err := wireApp(conf, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			logger.Info("start app ...")
			if err := app.Run(); err != nil {
				return err
			}

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-quit:
			case err := <-app.Err():
				logger.Error("http server failed", zap.Error(err))
			}

			logger.Info("shutdown app ...")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return app.Stop(ctx)
		},
	}
	rootCmd.PersistentFlags().AddFlagSet(configFlags())

	command.Register(rootCmd,
		func() (*command.Command, func(), error) {
			return wireCommand(conf, logger)
		},
		func() (*commandHandler.FieldsHandler, error) {
			return wireFields(conf)
		},
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig(offline bool) error {
	if envPath != "" && yamlPath != "" {
		fmt.Println("both --env and --config given, --env values take precedence")
	}
	if err := loadDotenv(); err != nil {
		return err
	}

	v := viper.NewWithOptions(viper.KeyDelimiter("__"))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.AutomaticEnv()
	for key, value := range config.Defaults {
		v.SetDefault(key, value)
	}

	if yamlPath != "" {
		if !filepath.IsAbs(yamlPath) {
			yamlPath = filepath.Join(rootPath, "conf", yamlPath)
		}
		fmt.Println("load yaml config:", yamlPath)
		v.SetConfigFile(yamlPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config failed: %w", err)
		}
		v.WatchConfig()
		v.OnConfigChange(func(in fsnotify.Event) {
			fmt.Println("config file changed:", in.Name)
			next := &config.Configuration{}
			if err := v.Unmarshal(next); err != nil {
				fmt.Println("unmarshal on change failed:", err)
				return
			}
			if err := config.Validate(next); err != nil {
				fmt.Println("ignoring invalid config change:", err)
				return
			}
			// only the log level is applied without a restart
			if logger != nil && next.Log.Level != conf.Log.Level {
				logger.Warn("LOG__LEVEL changed, restart to apply", zap.String("level", next.Log.Level))
			}
		})
	}

	bindEnvs(v, reflect.TypeOf(config.Configuration{}))
	// DATABASE_URL is the conventional name used by hosting platforms.
	if err := v.BindEnv("DATABASE__URL", "DATABASE__URL", "DATABASE_URL"); err != nil {
		return err
	}

	conf = &config.Configuration{}
	if err := v.Unmarshal(conf); err != nil {
		return fmt.Errorf("unmarshal config failed: %w", err)
	}
	if Version != "" {
		conf.App.Version = Version
	}
	validate := config.Validate
	if offline {
		validate = config.ValidateOffline
	}
	if err := validate(conf); err != nil {
		return fmt.Errorf("invalid configuration (is DATABASE_URL set?): %w", err)
	}

	var err error
	if logger, err = log.NewLogger(conf); err != nil {
		return fmt.Errorf("init logger failed: %w", err)
	}
	return nil
}

// loadDotenv exports --env, or ./.env when present, into the process
// environment. Variables already set win.
func loadDotenv() error {
	if envPath != "" {
		if !filepath.IsAbs(envPath) {
			envPath = filepath.Join(rootPath, envPath)
		}
		fmt.Println("load .env config:", envPath)
		return godotenv.Load(envPath)
	}
	local := filepath.Join(rootPath, ".env")
	if ok, _ := path.Exists(local); ok {
		return godotenv.Load(local)
	}
	return nil
}

func bindEnvs(v *viper.Viper, t reflect.Type, path ...string) {
	// 若遇到指標，取其 Elem
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			tag = field.Name
		}
		newPath := append(append([]string{}, path...), tag)
		if field.Type.Kind() == reflect.Struct || (field.Type.Kind() == reflect.Ptr && field.Type.Elem().Kind() == reflect.Struct) {
			bindEnvs(v, field.Type, newPath...)
		} else {
			_ = v.BindEnv(strings.Join(newPath, "__"))
		}
	}
}
