package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env             string
	Port            string
	DatabaseURL     string
	LogLevel        string
	AllowedOrigins  []string
	SendBuffer      int // outbound frames buffered per connection
	MaxMessageBytes int64
	PingInterval    time.Duration
	WriteTimeout    time.Duration
	EventBuffer     int
}

func Load() Config {
	cfg := Config{
		Env:             getEnv("APP_ENV", "dev"),
		Port:            getEnv("PORT", "8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		AllowedOrigins:  getEnvList("ALLOWED_ORIGINS", []string{"*"}),
		SendBuffer:      getEnvInt("SEND_BUFFER", 16),
		MaxMessageBytes: int64(getEnvInt("MAX_MESSAGE_BYTES", 4096)),
		PingInterval:    time.Duration(getEnvInt("PING_INTERVAL", 20)) * time.Second,
		WriteTimeout:    time.Duration(getEnvInt("WRITE_TIMEOUT", 10)) * time.Second,
		EventBuffer:     getEnvInt("EVENT_BUFFER", 1000),
	}
	return cfg
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return "0.0.0.0:" + c.Port
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return fallback
}

// getEnvList splits a comma-separated variable, dropping empty entries.
func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
