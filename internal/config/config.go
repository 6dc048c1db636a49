package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Mongo     MongoConfig     `yaml:"mongo"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Session   SessionConfig   `yaml:"session"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	AI        AIConfig        `yaml:"ai"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Port            string `yaml:"port"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
	CORSOrigins     string `yaml:"cors_origins"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTL      string `yaml:"ttl"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	TokenTTL  string `yaml:"token_ttl"`
}

type SessionConfig struct {
	// DefaultDuration applies when neither the request nor the quiz sets one.
	DefaultDuration int `yaml:"default_duration"`
	// EnforceEndTime rejects completions submitted after end_time + Grace.
	EnforceEndTime bool   `yaml:"enforce_end_time"`
	Grace          string `yaml:"grace"`
}

type RateLimitConfig struct {
	Requests int    `yaml:"requests"`
	Window   string `yaml:"window"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Env   string `yaml:"env"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            "8080",
			ReadTimeout:     "15s",
			WriteTimeout:    "15s",
			ShutdownTimeout: "30s",
			CORSOrigins:     "*",
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "quizarena",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
			TTL:  "24h",
		},
		Auth: AuthConfig{
			TokenTTL: "72h",
		},
		Session: SessionConfig{
			DefaultDuration: 10,
			Grace:           "30s",
		},
		RateLimit: RateLimitConfig{
			Requests: 30,
			Window:   "1m",
		},
		AI:  DefaultAIConfig(),
		Log: LogConfig{Level: "info", Env: "production"},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// the environment, in that order of precedence. A missing file at path is
// not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.CORSOrigins = getEnv("CORS_ALLOWED_ORIGINS", c.Server.CORSOrigins)
	c.Mongo.URI = getEnv("MONGO_URI", c.Mongo.URI)
	c.Mongo.Database = getEnv("MONGO_DATABASE", c.Mongo.Database)
	c.Redis.Addr = strings.TrimPrefix(getEnv("REDIS_URI", c.Redis.Addr), "redis://")
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("REDIS_DB", c.Redis.DB)
	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.TokenTTL = getEnv("JWT_TTL", c.Auth.TokenTTL)
	c.Session.DefaultDuration = getEnvInt("SESSION_DEFAULT_DURATION", c.Session.DefaultDuration)
	c.Session.EnforceEndTime = getEnvBool("SESSION_ENFORCE_END_TIME", c.Session.EnforceEndTime)
	c.RateLimit.Requests = getEnvInt("RATE_LIMIT_REQUESTS", c.RateLimit.Requests)
	c.RateLimit.Window = getEnv("RATE_LIMIT_WINDOW", c.RateLimit.Window)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Env = getEnv("APP_ENV", c.Log.Env)
	c.AI.applyEnv()
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Mongo.URI == "" {
		return errors.New("mongo uri is required")
	}
	if c.Mongo.Database == "" {
		return errors.New("mongo database is required")
	}
	if c.Redis.Addr == "" {
		return errors.New("redis addr is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Session.DefaultDuration <= 0 {
		return errors.New("session default_duration must be positive")
	}
	return nil
}

// Duration parses raw or returns fallback when raw is empty or invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
