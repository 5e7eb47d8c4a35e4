package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	ServerPort          string        `mapstructure:"SERVER_PORT"`
	DatabaseURL         string        `mapstructure:"DATABASE_URL"`
	JWTSecretKey        string        `mapstructure:"JWT_SECRET_KEY"`
	TokenTTL            time.Duration `mapstructure:"TOKEN_TTL"`
	RequestTimeout      time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel            string        `mapstructure:"LOG_LEVEL"`
	LogPretty           bool          `mapstructure:"LOG_PRETTY"`
	AllowedOrigins      []string      `mapstructure:"ALLOWED_ORIGINS"`
	KafkaBrokers        []string      `mapstructure:"KAFKA_BROKERS"`
	KafkaOrderTopic     string        `mapstructure:"KAFKA_ORDER_TOPIC"`
	BootstrapAdminEmail string        `mapstructure:"BOOTSTRAP_ADMIN_EMAIL"`
}

var defaults = map[string]interface{}{
	"SERVER_PORT":           "8000",
	"DATABASE_URL":          "",
	"JWT_SECRET_KEY":        "",
	"TOKEN_TTL":             "24h",
	"REQUEST_TIMEOUT":       "15s",
	"LOG_LEVEL":             "info",
	"LOG_PRETTY":            false,
	"ALLOWED_ORIGINS":       "*",
	"KAFKA_BROKERS":         "",
	"KAFKA_ORDER_TOPIC":     "food-orders",
	"BOOTSTRAP_ADMIN_EMAIL": "",
}

// Load reads an optional .env file and then the process environment.
// Environment variables win over the file.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.AllowedOrigins = splitList(cfg.AllowedOrigins)
	cfg.KafkaBrokers = splitList(cfg.KafkaBrokers)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// splitList flattens comma separated entries and drops blanks; viper hands
// a single env var over as one element.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func (c *Config) Validate() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.JWTSecretKey == "" {
		missing = append(missing, "JWT_SECRET_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strings.TrimPrefix(c.ServerPort, ":")
}

// EventsEnabled reports whether order events should go to Kafka.
func (c *Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}
