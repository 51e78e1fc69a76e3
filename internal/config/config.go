package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"sugarWatch/internal/address"
)

// Config holds the settings shared by every command: chain access, the
// sugar and oracle contracts, pricing and cache lifetimes.
type Config struct {
	RPCURL        string
	SugarAddress  string
	OracleAddress string
	SugarABI      string
	OracleABI     string
	BatchSize     int
	TokenLimit    int
	PageSize      int

	Protocol   string
	AppURL     string
	Token      string
	Stable     string
	Connectors []string

	TokensTTL time.Duration
	PoolsTTL  time.Duration
	PricesTTL time.Duration

	LogLevel string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("batch-size", 40)
	v.SetDefault("token-limit", 2000)
	v.SetDefault("page-size", 2000)
	v.SetDefault("protocol", "Velodrome")
	v.SetDefault("app-url", "https://velodrome.finance")
	v.SetDefault("tokens-ttl", 10*time.Minute)
	v.SetDefault("pools-ttl", 10*time.Minute)
	v.SetDefault("prices-ttl", time.Minute)
	v.SetDefault("log-level", "info")
}

// newViper merges config file, environment variables, and flags.
func newViper(cfgFile string, flags *pflag.FlagSet, defaults ...func(*viper.Viper)) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("SUGAR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	for _, fn := range defaults {
		fn(v)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func loadBase(v *viper.Viper) (Config, error) {
	cfg := Config{
		RPCURL:     v.GetString("rpc"),
		SugarABI:   v.GetString("sugar-abi"),
		OracleABI:  v.GetString("oracle-abi"),
		BatchSize:  v.GetInt("batch-size"),
		TokenLimit: v.GetInt("token-limit"),
		PageSize:   v.GetInt("page-size"),
		Protocol:   v.GetString("protocol"),
		AppURL:     v.GetString("app-url"),
		TokensTTL:  v.GetDuration("tokens-ttl"),
		PoolsTTL:   v.GetDuration("pools-ttl"),
		PricesTTL:  v.GetDuration("prices-ttl"),
		LogLevel:   v.GetString("log-level"),
	}

	var err error
	if cfg.SugarAddress, err = requiredAddress(v, "sugar-address"); err != nil {
		return Config{}, err
	}
	if cfg.OracleAddress, err = requiredAddress(v, "oracle-address"); err != nil {
		return Config{}, err
	}
	if cfg.Token, err = requiredAddress(v, "token"); err != nil {
		return Config{}, err
	}
	if cfg.Stable, err = requiredAddress(v, "stable"); err != nil {
		return Config{}, err
	}
	if cfg.Connectors, err = address.NormalizeAll(getStringSlice(v, "connectors")); err != nil {
		return Config{}, fmt.Errorf("connectors: %w", err)
	}

	if cfg.RPCURL == "" {
		return Config{}, fmt.Errorf("rpc url is required")
	}
	if cfg.BatchSize <= 0 {
		return Config{}, fmt.Errorf("batch-size must be positive")
	}
	if cfg.PageSize <= 0 {
		return Config{}, fmt.Errorf("page-size must be positive")
	}
	return cfg, nil
}

func requiredAddress(v *viper.Viper, key string) (string, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	addr, err := address.Normalize(raw)
	if err != nil {
		return "", fmt.Errorf("%s: %w", key, err)
	}
	return addr, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
