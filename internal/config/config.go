package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"eventScope/internal/event"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL          string
	Event           string
	FromBlock       uint64
	ToBlock         uint64
	Out             string
	Errors          string
	ExportJSONL     string
	PGDSN           string
	HeaderCacheSize int
	LogLevel        string
	LogFile         string
	Schemas         []event.Definition
}

// Load merges an optional dotenv file, config file, environment variables, and flags into Config.
func Load(cfgFile, envFile string, flags *pflag.FlagSet) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load env file: %w", err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("COLLECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("rpc", "COLLECTOR_RPC", "RPC_SONIC"); err != nil {
		return Config{}, fmt.Errorf("bind rpc env: %w", err)
	}

	v.SetDefault("event", "LiquidationCall")
	v.SetDefault("out", "./events.json")
	v.SetDefault("header-cache-size", 1024)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var schemas []event.Definition
	if v.IsSet("schemas") {
		if err := v.UnmarshalKey("schemas", &schemas); err != nil {
			return Config{}, fmt.Errorf("parse schemas: %w", err)
		}
	}

	cfg := Config{
		RPCURL:          strings.TrimSpace(v.GetString("rpc")),
		Event:           strings.TrimSpace(v.GetString("event")),
		FromBlock:       v.GetUint64("from"),
		ToBlock:         v.GetUint64("to"),
		Out:             v.GetString("out"),
		Errors:          v.GetString("errors"),
		ExportJSONL:     v.GetString("export-jsonl"),
		PGDSN:           v.GetString("pg-dsn"),
		HeaderCacheSize: v.GetInt("header-cache-size"),
		LogLevel:        v.GetString("log-level"),
		LogFile:         v.GetString("log-file"),
		Schemas:         schemas,
	}

	if cfg.Out == "" {
		return Config{}, fmt.Errorf("output path is required")
	}
	if cfg.ToBlock != 0 && cfg.ToBlock < cfg.FromBlock {
		return Config{}, fmt.Errorf("invalid block range: from %d > to %d", cfg.FromBlock, cfg.ToBlock)
	}

	return cfg, nil
}

// Registry returns the built-in event schemas plus the ones declared in the config file.
func (c Config) Registry() (*event.Registry, error) {
	reg, err := event.BuiltinRegistry()
	if err != nil {
		return nil, err
	}
	if err := reg.Define(c.Schemas); err != nil {
		return nil, err
	}
	return reg, nil
}
