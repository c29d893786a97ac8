package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application level configuration loaded from environment variables
// and, optionally, a config file named by CONFIG_FILE.
type Config struct {
	ServerPort     string        `mapstructure:"SERVER_PORT"`
	AppEnv         string        `mapstructure:"APP_ENV"`
	DBDriver       string        `mapstructure:"DB_DRIVER"`
	MySQLDSN       string        `mapstructure:"MYSQL_DSN"`
	SQLitePath     string        `mapstructure:"SQLITE_PATH"`
	ResetDB        bool          `mapstructure:"RESET_DB"`
	RedisAddr      string        `mapstructure:"REDIS_ADDR"`
	RedisDB        int           `mapstructure:"REDIS_DB"`
	RedisPass      string        `mapstructure:"REDIS_PASSWORD"`
	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	JWTExpire      time.Duration `mapstructure:"JWT_EXPIRE"`
	ClientURL      string        `mapstructure:"CLIENT_URL"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
	SwaggerHost    string        `mapstructure:"SWAGGER_HOST"`
}

var defaults = map[string]interface{}{
	"SERVER_PORT":      "8080",
	"APP_ENV":          "production",
	"DB_DRIVER":        "mysql",
	"MYSQL_DSN":        "user:password@tcp(localhost:3306)/flowspace?charset=utf8mb4&parseTime=True&loc=Local",
	"SQLITE_PATH":      "./data/flowspace.db",
	"RESET_DB":         false,
	"REDIS_ADDR":       "localhost:6379",
	"REDIS_DB":         0,
	"REDIS_PASSWORD":   "",
	"JWT_SECRET":       "change-me",
	"JWT_EXPIRE":       "168h",
	"CLIENT_URL":       "http://localhost:5173",
	"LOG_LEVEL":        "info",
	"RATE_LIMIT_RPS":   10.0,
	"RATE_LIMIT_BURST": 30,
	"SWAGGER_HOST":     "",
}

// Load builds Config from environment with sensible defaults.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment reports whether error details may be exposed to clients.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.JWTExpire <= 0 {
		return fmt.Errorf("JWT_EXPIRE must be positive")
	}
	return nil
}
