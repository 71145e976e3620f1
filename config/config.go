package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Database struct {
		Driver string
		DSN    string
	}
	Session struct {
		// TTL bounds session validity from issuance; zero disables expiry.
		TTL time.Duration
	}
}

// Load reads configuration from environment variables and an optional
// config file in the working directory. Env keys use the NOTES prefix,
// e.g. NOTES_DATABASE_DSN.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NOTES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", ":3000")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/notes.db")
	v.SetDefault("session.ttl", 720*time.Hour)

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}
