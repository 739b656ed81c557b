package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Payment  PaymentConfig
	Ticket   TicketConfig
	Email    EmailConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
}

type DatabaseConfig struct {
	Driver string // "postgres" or "sqlite3"
	URL    string // Full database URL or sqlite path
}

type AuthConfig struct {
	JWTSecret string
}

// PaymentConfig drives the simulated gateway. Policy is one of
// "always_success", "always_decline", "failure_rate" or "token", see the
// gateway strategies in internal/services.
type PaymentConfig struct {
	GatewayPolicy  string
	FailureRate    float64       // Only used by the failure_rate policy
	GatewayTimeout time.Duration // Gateway calls past this are treated as errors
}

type TicketConfig struct {
	SecretSalt string // Server-side salt for final key derivation, rotatable
}

type EmailConfig struct {
	FromEmail string
	FromName  string
}

func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "localhost"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Driver: getEnv("DB_DRIVER", "postgres"),
			URL:    getEnv("DATABASE_URL", "postgres://postgres@localhost:5432/games_ticketing?sslmode=disable"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		},
		Payment: PaymentConfig{
			GatewayPolicy:  getEnv("PAYMENT_GATEWAY_POLICY", "always_success"),
			FailureRate:    getEnvAsFloat("PAYMENT_FAILURE_RATE", 0.0),
			GatewayTimeout: getEnvAsDuration("PAYMENT_GATEWAY_TIMEOUT", 10*time.Second),
		},
		Ticket: TicketConfig{
			SecretSalt: getEnv("TICKET_SECRET_SALT", "dev-only-ticket-salt"),
		},
		Email: EmailConfig{
			FromEmail: getEnv("FROM_EMAIL", "noreply@gamestickets.example"),
			FromName:  getEnv("FROM_NAME", "Games Ticketing"),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
