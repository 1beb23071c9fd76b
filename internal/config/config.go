package config

import (
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Security  SecurityConfig  `mapstructure:"security"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Audit     AuditConfig     `mapstructure:"audit"`
	DB        DBConfig        `mapstructure:"db"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Env          string        `mapstructure:"env"` // development, production
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// IsProduction reports whether internal error detail must be masked in
// client-facing responses.
func (s ServerConfig) IsProduction() bool {
	return s.Env == "production"
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type CORSConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	AllowOrigins     string `mapstructure:"allow_origins"`
	AllowMethods     string `mapstructure:"allow_methods"`
	AllowHeaders     string `mapstructure:"allow_headers"`
	AllowCredentials bool   `mapstructure:"allow_credentials"`
}

type SecurityConfig struct {
	HelmetEnabled bool `mapstructure:"helmet_enabled"`
}

type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Global rate limits
	Global struct {
		Requests int           `mapstructure:"requests"` // Number of requests
		Window   time.Duration `mapstructure:"window"`   // Time window
		Burst    int           `mapstructure:"burst"`    // Burst size
	} `mapstructure:"global"`

	// Per IP rate limits
	PerIP struct {
		Enabled   bool          `mapstructure:"enabled"`
		Requests  int           `mapstructure:"requests"`
		Window    time.Duration `mapstructure:"window"`
		Burst     int           `mapstructure:"burst"`
		WhiteList []string      `mapstructure:"whitelist"` // IP or CIDR whitelist
	} `mapstructure:"per_ip"`

	// Storage configuration for distributed rate limiting
	Storage struct {
		Type  string `mapstructure:"type"` // memory, redis
		Redis struct {
			Host     string        `mapstructure:"host"`
			Port     int           `mapstructure:"port"`
			Password string        `mapstructure:"password"`
			DB       int           `mapstructure:"db"`
			Timeout  time.Duration `mapstructure:"timeout"`
		} `mapstructure:"redis"`
	} `mapstructure:"storage"`
}

// AuditConfig controls the asynchronous request/response audit pipeline.
// When disabled the scaffold runs without any database.
type AuditConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Workers       int           `mapstructure:"workers"`
	BufferSize    int           `mapstructure:"buffer_size"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

type DBConfig struct {
	Type     string `mapstructure:"type"` // postgres, mongodb, couchbase, oracle
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	Pool     struct {
		MaxConns  int `mapstructure:"max_conns"`
		MinConns  int `mapstructure:"min_conns"`
		BatchSize int `mapstructure:"batch_size"`
	} `mapstructure:"pool"`
}

func LoadConfig(configPath string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(filepath.Dir(configPath))
	viper.SetConfigFile(configPath)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
