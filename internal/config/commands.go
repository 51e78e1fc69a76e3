package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DiscordTokens are the bot tokens; a bot with an empty token is not started.
type DiscordTokens struct {
	Pricing   string
	TVL       string
	Fees      string
	Rewards   string
	Commander string
}

// Any reports whether at least one bot is configured.
func (t DiscordTokens) Any() bool {
	return t.Pricing != "" || t.TVL != "" || t.Fees != "" || t.Rewards != "" || t.Commander != ""
}

// BotsConfig configures the bots command.
type BotsConfig struct {
	Config
	Discord    DiscordTokens
	Interval   time.Duration
	MaxRetries int
	RetryDelay time.Duration
	// MetricsAddr serves /metrics when set.
	MetricsAddr string
}

// LoadBots merges config file, environment variables, and flags into BotsConfig.
func LoadBots(cfgFile string, flags *pflag.FlagSet) (BotsConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("interval", 2*time.Minute)
		v.SetDefault("max-retries", 3)
		v.SetDefault("retry-delay", time.Second)
	})
	if err != nil {
		return BotsConfig{}, err
	}

	base, err := loadBase(v)
	if err != nil {
		return BotsConfig{}, err
	}

	cfg := BotsConfig{
		Config: base,
		Discord: DiscordTokens{
			Pricing:   v.GetString("discord-token-pricing"),
			TVL:       v.GetString("discord-token-tvl"),
			Fees:      v.GetString("discord-token-fees"),
			Rewards:   v.GetString("discord-token-rewards"),
			Commander: v.GetString("discord-token-commander"),
		},
		Interval:    v.GetDuration("interval"),
		MaxRetries:  v.GetInt("max-retries"),
		RetryDelay:  v.GetDuration("retry-delay"),
		MetricsAddr: v.GetString("metrics-addr"),
	}

	if !cfg.Discord.Any() {
		return BotsConfig{}, fmt.Errorf("at least one discord token is required")
	}
	if cfg.Interval <= 0 {
		return BotsConfig{}, fmt.Errorf("interval must be positive")
	}
	return cfg, nil
}

// ServeConfig configures the HTTP API. Sinks, when set, back the snapshot
// history routes.
type ServeConfig struct {
	Config
	SinkConfig
	HTTPAddr string
}

// LoadServe merges config file, environment variables, and flags into ServeConfig.
func LoadServe(cfgFile string, flags *pflag.FlagSet) (ServeConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("http-addr", ":8080")
		v.SetDefault("redis-ttl", time.Hour)
	})
	if err != nil {
		return ServeConfig{}, err
	}

	base, err := loadBase(v)
	if err != nil {
		return ServeConfig{}, err
	}
	return ServeConfig{
		Config:     base,
		SinkConfig: loadSinks(v),
		HTTPAddr:   v.GetString("http-addr"),
	}, nil
}

// RedisConfig locates the snapshot publisher; an empty Addr disables it.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	TTL       time.Duration
	Retention time.Duration
}

// SinkConfig locates the snapshot stores. Empty fields disable a store.
type SinkConfig struct {
	Out   string
	PGDSN string
	Redis RedisConfig
}

// Any reports whether at least one store is configured.
func (s SinkConfig) Any() bool {
	return s.Out != "" || s.PGDSN != "" || s.Redis.Addr != ""
}

func loadSinks(v *viper.Viper) SinkConfig {
	return SinkConfig{
		Out:   v.GetString("out"),
		PGDSN: v.GetString("pg-dsn"),
		Redis: RedisConfig{
			Addr:      v.GetString("redis-addr"),
			Password:  v.GetString("redis-password"),
			DB:        v.GetInt("redis-db"),
			TTL:       v.GetDuration("redis-ttl"),
			Retention: v.GetDuration("redis-retention"),
		},
	}
}

// SnapshotConfig configures the snapshot command.
type SnapshotConfig struct {
	Config
	SinkConfig
	Interval time.Duration
	// Once takes a single snapshot and exits.
	Once     bool
	TopPools int
}

// LoadSnapshot merges config file, environment variables, and flags into SnapshotConfig.
func LoadSnapshot(cfgFile string, flags *pflag.FlagSet) (SnapshotConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("interval", 10*time.Minute)
		v.SetDefault("top-pools", 20)
		v.SetDefault("out", "./data/snapshots.jsonl")
		v.SetDefault("redis-ttl", time.Hour)
		v.SetDefault("redis-retention", 7*24*time.Hour)
	})
	if err != nil {
		return SnapshotConfig{}, err
	}

	base, err := loadBase(v)
	if err != nil {
		return SnapshotConfig{}, err
	}

	cfg := SnapshotConfig{
		Config:     base,
		SinkConfig: loadSinks(v),
		Interval:   v.GetDuration("interval"),
		Once:       v.GetBool("once"),
		TopPools:   v.GetInt("top-pools"),
	}

	if !cfg.Once && cfg.Interval <= 0 {
		return SnapshotConfig{}, fmt.Errorf("interval must be positive")
	}
	if !cfg.SinkConfig.Any() {
		return SnapshotConfig{}, fmt.Errorf("no snapshot sink configured")
	}
	return cfg, nil
}
