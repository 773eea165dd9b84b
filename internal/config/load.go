package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// POSTCRAFT_DATABASE_URL for database.url.
const EnvPrefix = "POSTCRAFT"

// keys lists every configuration key so that each can be bound to its
// environment variable. Unmarshal only sees env-only values for bound keys.
var keys = []string{
	"server.port",
	"server.log_level",
	"server.read_timeout_seconds",
	"server.write_timeout_seconds",
	"server.shutdown_timeout_seconds",
	"database.url",
	"database.max_open_conns",
	"database.max_idle_conns",
	"auth.jwt_secret",
	"auth.token_lifetime_minutes",
	"auth.bcrypt_cost",
	"auth.key_encryption_secret",
	"llm.model_name",
	"llm.base_url",
	"llm.max_retries",
	"llm.initial_backoff_ms",
	"llm.backoff_multiplier",
	"llm.backoff_jitter",
	"llm.attempt_timeout_seconds",
	"llm.temperature",
	"llm.max_output_tokens",
	"content.fetch_timeout_seconds",
	"content.max_body_bytes",
	"content.max_text_chars",
	"content.user_agent",
	"quota.monthly_limit",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 120)
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.initial_backoff_ms", 1000)
	v.SetDefault("llm.backoff_multiplier", 2.0)
	v.SetDefault("llm.backoff_jitter", 0.0)
	v.SetDefault("llm.attempt_timeout_seconds", 60)
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_output_tokens", 2048)

	v.SetDefault("content.fetch_timeout_seconds", 15)
	v.SetDefault("content.max_body_bytes", 2<<20)
	v.SetDefault("content.max_text_chars", 20000)
	v.SetDefault("content.user_agent", "postcraft-api/1.0 (+https://github.com/phrazzld/postcraft-api)")

	v.SetDefault("quota.monthly_limit", 50)
}

// Load reads configuration from defaults, an optional config.yaml, an
// optional .env file and the environment, in increasing order of precedence.
// It returns a validated Config or an error describing what is wrong.
func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
