package config

import (
	"os"
	"strings"
)

type Config struct {
	HTTPAddr      string
	DatabaseURL   string
	JWTSecret     string
	RedisAddr     string
	KafkaBrokers  []string
	FrontendURL   string
	AdminEmail    string
	AdminPassword string
}

func Load() Config {
	return Config{
		HTTPAddr:      getenv("HTTP_ADDR", ":5000"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		KafkaBrokers:  splitCSV(os.Getenv("KAFKA_BROKERS")),
		FrontendURL:   getenv("FRONTEND_URL", "*"),
		AdminEmail:    getenv("ADMIN_EMAIL", "admin@campuskart.com"),
		AdminPassword: getenv("ADMIN_PASSWORD", "admin123"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
