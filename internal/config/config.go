package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	OpsPath           string
	EventsOut         string
	PairsOut          string
	Checkpoint        string
	CheckpointEnabled bool
	BatchSize         int
	MaxRetries        int
	RetryBackoff      time.Duration
	FactoryAddress    string
	FeeTaker          string
	ProtocolMintFee   bool
	SingleAssetLoans  bool
	EventsIn          string
	PairsIn           string
	Window            time.Duration
	PgDSN             string
	LogLevel          string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CHEAPSWAP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("events-out", "./data/events.jsonl")
	v.SetDefault("pairs-out", "./data/pairs.jsonl")
	v.SetDefault("checkpoint", "./data/checkpoint.json")
	v.SetDefault("checkpoint-enabled", true)
	v.SetDefault("batch-size", 100)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("window", 5*time.Minute)
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

	cfg := Config{
		OpsPath:           v.GetString("ops"),
		EventsOut:         v.GetString("events-out"),
		PairsOut:          v.GetString("pairs-out"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		BatchSize:         v.GetInt("batch-size"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		FactoryAddress:    v.GetString("factory-address"),
		FeeTaker:          v.GetString("fee-taker"),
		ProtocolMintFee:   v.GetBool("protocol-mint-fee"),
		SingleAssetLoans:  v.GetBool("single-asset-loans"),
		EventsIn:          v.GetString("in"),
		PairsIn:           v.GetString("pairs"),
		Window:            v.GetDuration("window"),
		PgDSN:             v.GetString("pg-dsn"),
		LogLevel:          v.GetString("log-level"),
	}

	return cfg, nil
}
