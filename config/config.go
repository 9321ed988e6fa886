package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	HotPepper HotPepperConfig
	OpenAI    OpenAIConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// HotPepperConfig for the Hot Pepper gourmet directory API.
// An empty APIKey switches the server to the demo directory.
type HotPepperConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// OpenAIConfig for the interview assistant. An empty APIKey switches
// chat and preference extraction to the scripted interviewer.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

type CORSConfig struct {
	AllowOrigins []string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         env("PORT", "8000"),
			Env:          env("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             env("DATABASE_DSN", "tablepick:tablepick@tcp(localhost:3306)/tablepick?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: time.Hour,
		},
		HotPepper: HotPepperConfig{
			BaseURL: env("HOTPEPPER_BASE_URL", "https://webservice.recruit.co.jp/hotpepper/gourmet/v1/"),
			APIKey:  os.Getenv("HOTPEPPER_API_KEY"),
			Timeout: 10 * time.Second,
		},
		OpenAI: OpenAIConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			Model:   env("OPENAI_MODEL", "gpt-3.5-turbo"),
			Timeout: 30 * time.Second,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{env("FRONTEND_ORIGIN", "http://localhost:5173")},
		},
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
