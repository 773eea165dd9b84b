package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Content  ContentConfig  `mapstructure:"content" validate:"required"`
	Quota    QuotaConfig    `mapstructure:"quota" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ReadTimeoutSeconds     int    `mapstructure:"read_timeout_seconds" validate:"gte=1"`
	WriteTimeoutSeconds    int    `mapstructure:"write_timeout_seconds" validate:"gte=1"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gte=1,lte=44640"`
	BcryptCost           int    `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
	// KeyEncryptionSecret seals user API keys at rest.
	KeyEncryptionSecret string `mapstructure:"key_encryption_secret" validate:"required,min=32"`
}

// LLMConfig contains the model and retry policy used for generation calls.
// There is no process-wide API key: every request carries its own.
type LLMConfig struct {
	ModelName             string  `mapstructure:"model_name" validate:"required"`
	BaseURL               string  `mapstructure:"base_url" validate:"omitempty,url"`
	MaxRetries            int     `mapstructure:"max_retries" validate:"gte=1,lte=10"`
	InitialBackoffMs      int     `mapstructure:"initial_backoff_ms" validate:"gte=0"`
	BackoffMultiplier     float64 `mapstructure:"backoff_multiplier" validate:"gte=1"`
	BackoffJitter         float64 `mapstructure:"backoff_jitter" validate:"gte=0,lt=1"`
	AttemptTimeoutSeconds int     `mapstructure:"attempt_timeout_seconds" validate:"gte=0"`
	Temperature           float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxOutputTokens       int     `mapstructure:"max_output_tokens" validate:"gte=0"`
}

// ContentConfig controls how source URLs are fetched.
type ContentConfig struct {
	FetchTimeoutSeconds int    `mapstructure:"fetch_timeout_seconds" validate:"gte=1"`
	MaxBodyBytes        int64  `mapstructure:"max_body_bytes" validate:"gte=1024"`
	MaxTextChars        int    `mapstructure:"max_text_chars" validate:"gte=100"`
	UserAgent           string `mapstructure:"user_agent" validate:"required"`
}

// QuotaConfig limits how many posts a user may generate per month.
type QuotaConfig struct {
	MonthlyLimit int `mapstructure:"monthly_limit" validate:"gte=1"`
}
