package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	App      AppConfig
	Auth     AuthConfig
	Email    EmailConfig
	Chat     ChatConfig
}

type DatabaseConfig struct {
	URL               string        `env:"DATABASE_URL,required,notEmpty"`
	MaxConns          int32         `env:"DB_MAX_CONNS" envDefault:"25"`
	MinConns          int32         `env:"DB_MIN_CONNS" envDefault:"5"`
	MaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"5m"`
	MaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"1m"`
	HealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
	MigrateOnStart    bool          `env:"DB_MIGRATE_ON_START" envDefault:"false"`
}

type ServerConfig struct {
	Port           string        `env:"PORT" envDefault:"8080"`
	Env            string        `env:"ENV" envDefault:"development"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	ReadTimeout    time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout   time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"45s"`
	IdleTimeout    time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	TrustedProxies []string      `env:"TRUSTED_PROXIES" envSeparator:","`
	AuthRateLimit  int           `env:"RATE_LIMIT_AUTH_PER_MINUTE" envDefault:"10"`
	ChatRateLimit  int           `env:"RATE_LIMIT_CHAT_PER_MINUTE" envDefault:"20"`
}

type AppConfig struct {
	Name    string `env:"APP_NAME" envDefault:"Lanceraa"`
	Version string `env:"APP_VERSION" envDefault:"1.0.0"`
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:3000"`
}

type AuthConfig struct {
	JWTSecret           string        `env:"JWT_SECRET,required,notEmpty"`
	JWTAlgorithm        string        `env:"JWT_ALGORITHM" envDefault:"HS256"`
	AccessTokenExpiry   time.Duration `env:"ACCESS_TOKEN_EXPIRY" envDefault:"30m"`
	VerificationCodeTTL time.Duration `env:"VERIFICATION_CODE_TTL" envDefault:"30m"`
	ResetTokenTTL       time.Duration `env:"RESET_TOKEN_TTL" envDefault:"24h"`
	CleanupInterval     time.Duration `env:"CLEANUP_INTERVAL" envDefault:"1h"`
	LoginFailureDelay   time.Duration `env:"LOGIN_FAILURE_DELAY" envDefault:"250ms"`
	LoginFailureJitter  time.Duration `env:"LOGIN_FAILURE_JITTER" envDefault:"100ms"`
}

type EmailConfig struct {
	Provider  string `env:"EMAIL_PROVIDER" envDefault:"log"`
	AWSRegion string `env:"AWS_REGION"`
	From      string `env:"EMAIL_FROM"`
}

type ChatConfig struct {
	APIKey         string        `env:"GROQ_API_KEY"`
	Model          string        `env:"GROQ_MODEL" envDefault:"llama3-8b-8192"`
	BaseURL        string        `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	MaxTokens      int           `env:"GROQ_MAX_TOKENS" envDefault:"150"`
	Temperature    float64       `env:"GROQ_TEMPERATURE" envDefault:"0.7"`
	Timeout        time.Duration `env:"GROQ_TIMEOUT" envDefault:"10s"`
	MaxAttempts    int           `env:"CHAT_MAX_ATTEMPTS" envDefault:"3"`
	InitialBackoff time.Duration `env:"CHAT_INITIAL_BACKOFF" envDefault:"1s"`
}

// Enabled reports whether a provider API key is configured
func (c ChatConfig) Enabled() bool {
	return c.APIKey != ""
}

// MaxResponseTime is the longest a chat request can take: every attempt
// running to the provider timeout plus the backoff waits between attempts
// (InitialBackoff doubling, none after the last attempt)
func (c ChatConfig) MaxResponseTime() time.Duration {
	total := time.Duration(c.MaxAttempts) * c.Timeout
	wait := c.InitialBackoff
	for i := 1; i < c.MaxAttempts; i++ {
		total += wait
		wait *= 2
	}
	return total
}

func (c ServerConfig) IsProduction() bool {
	return c.Env == "production"
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.Server.AllowedOrigins = resolveAllowedOrigins(cfg.Server.Env, cfg.Server.AllowedOrigins)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if err := validateJWTSecret(c.Auth.JWTSecret, c.Server.Env); err != nil {
		return err
	}

	switch c.Auth.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("JWT_ALGORITHM must be one of HS256, HS384, HS512 (got %q)", c.Auth.JWTAlgorithm)
	}

	switch c.Email.Provider {
	case "log":
	case "ses":
		if c.Email.AWSRegion == "" || c.Email.From == "" {
			return fmt.Errorf("AWS_REGION and EMAIL_FROM are required when EMAIL_PROVIDER=ses")
		}
	default:
		return fmt.Errorf("EMAIL_PROVIDER must be log or ses (got %q)", c.Email.Provider)
	}

	if c.Chat.Temperature < 0 || c.Chat.Temperature > 2 {
		return fmt.Errorf("GROQ_TEMPERATURE must be within [0, 2] (got %v)", c.Chat.Temperature)
	}
	if c.Chat.MaxAttempts < 1 {
		return fmt.Errorf("CHAT_MAX_ATTEMPTS must be at least 1 (got %d)", c.Chat.MaxAttempts)
	}
	if c.Chat.Timeout <= 0 || c.Chat.InitialBackoff <= 0 {
		return fmt.Errorf("GROQ_TIMEOUT and CHAT_INITIAL_BACKOFF must be positive")
	}
	// A chat reply written after the write deadline never reaches the client
	if c.Chat.Enabled() && c.Server.WriteTimeout <= c.Chat.MaxResponseTime() {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT (%s) must exceed the chat worst case of %s",
			c.Server.WriteTimeout, c.Chat.MaxResponseTime())
	}

	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) cannot exceed DB_MAX_CONNS (%d)", c.Database.MinConns, c.Database.MaxConns)
	}

	return nil
}

// validateJWTSecret enforces minimum security standards for JWT secret
func validateJWTSecret(secret, env string) error {
	minLength := 16
	if env == "production" {
		minLength = 32 // 256 bits
	}

	if len(secret) < minLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("JWT_SECRET cannot be a common weak value")
		}
	}

	return nil
}

func resolveAllowedOrigins(env string, configured []string) []string {
	origins := make([]string, 0, len(configured))
	for _, origin := range configured {
		if o := strings.TrimSpace(origin); o != "" {
			origins = append(origins, o)
		}
	}
	if env == "production" || len(origins) > 0 {
		return origins
	}

	// Development: allow localhost variants
	return []string{
		"http://localhost:3000",
		"http://localhost:8080",
		"http://localhost:5173", // Vite default
		"http://127.0.0.1:3000",
		"http://127.0.0.1:8080",
		"http://127.0.0.1:5173",
	}
}
