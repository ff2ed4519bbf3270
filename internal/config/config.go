// Package config loads drivermatch configuration with viper and exposes a
// nil-safe wrapper around it.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g.
// DRIVERMATCH_SERVER_PORT overrides server.port.
const EnvPrefix = "DRIVERMATCH"

// Config is a read-only view over a viper instance. The zero value and a
// Config built from a nil viper return zero values for every key.
type Config struct {
	v *viper.Viper
}

// New wraps v.
func New(v *viper.Viper) *Config {
	return &Config{v: v}
}

// Load reads the YAML file at path (optional), applies defaults and binds
// environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
	} else {
		v.SetConfigName("drivermatch")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/drivermatch")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return New(v), nil
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.rate_burst", 40)

	v.SetDefault("database.path", "drivermatch.db")

	v.SetDefault("modules.catalog.enabled", true)
	v.SetDefault("modules.quote.enabled", true)

	v.SetDefault("catalog.source", "sqlite")
	v.SetDefault("catalog.postgres_dsn", "")
	v.SetDefault("catalog.postgres_table", "Drivers")
	v.SetDefault("catalog.cache_ttl", 5*time.Minute)
	v.SetDefault("catalog.seed", true)

	v.SetDefault("selection.tolerance_percent", 10.0)
	v.SetDefault("selection.max_results", 5)
	v.SetDefault("selection.max_percentage_diff", 50.0)
	v.SetDefault("selection.max_pool", 200)

	v.SetDefault("load.voltages", []int{12, 24})
	v.SetDefault("load.led_options", []int{60, 120, 180, 240})
}

// Viper returns the wrapped instance, which may be nil.
func (c *Config) Viper() *viper.Viper {
	if c == nil {
		return nil
	}
	return c.v
}

func (c *Config) GetString(key string) string {
	if c == nil || c.v == nil {
		return ""
	}
	return c.v.GetString(key)
}

func (c *Config) GetStringSlice(key string) []string {
	if c == nil || c.v == nil {
		return nil
	}
	return c.v.GetStringSlice(key)
}

func (c *Config) GetIntSlice(key string) []int {
	if c == nil || c.v == nil {
		return nil
	}
	return c.v.GetIntSlice(key)
}

func (c *Config) GetInt(key string) int {
	if c == nil || c.v == nil {
		return 0
	}
	return c.v.GetInt(key)
}

func (c *Config) GetFloat64(key string) float64 {
	if c == nil || c.v == nil {
		return 0
	}
	return c.v.GetFloat64(key)
}

func (c *Config) GetBool(key string) bool {
	if c == nil || c.v == nil {
		return false
	}
	return c.v.GetBool(key)
}

func (c *Config) GetDuration(key string) time.Duration {
	if c == nil || c.v == nil {
		return 0
	}
	return c.v.GetDuration(key)
}

func (c *Config) IsSet(key string) bool {
	if c == nil || c.v == nil {
		return false
	}
	return c.v.IsSet(key)
}

// Sub returns the subtree at key. A missing subtree yields an empty Config,
// never nil.
func (c *Config) Sub(key string) *Config {
	if c == nil || c.v == nil {
		return New(nil)
	}
	sub := c.v.Sub(key)
	if sub == nil {
		return New(viper.New())
	}
	return New(sub)
}

// Unmarshal decodes the whole configuration into target.
func (c *Config) Unmarshal(target any) error {
	if c == nil || c.v == nil {
		return nil
	}
	return c.v.Unmarshal(target)
}

// UnmarshalKey decodes the subtree at key into target.
func (c *Config) UnmarshalKey(key string, target any) error {
	if c == nil || c.v == nil {
		return nil
	}
	return c.v.UnmarshalKey(key, target)
}
