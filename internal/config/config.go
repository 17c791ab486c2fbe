package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	PostgresConn  string
	ServerAddress string
	Environment   string
	JWTSecret     string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

func Load() (*Config, error) {
	// A missing .env file is fine, plain environment variables still apply.
	_ = godotenv.Load(".env")

	cfg := &Config{
		PostgresConn:  os.Getenv("POSTGRES_CONN"),
		ServerAddress: os.Getenv("SERVER_ADDRESS"),
		Environment:   os.Getenv("ENV"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPUsername:  os.Getenv("SMTP_USERNAME"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:      os.Getenv("SMTP_FROM"),
	}

	if port := os.Getenv("SMTP_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", port, err)
		}
		cfg.SMTPPort = p
	} else {
		cfg.SMTPPort = 587
	}

	if cfg.ServerAddress == "" {
		cfg.ServerAddress = "0.0.0.0:8080"
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	if cfg.PostgresConn == "" {
		return nil, fmt.Errorf("POSTGRES_CONN is required but not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	return cfg, nil
}
