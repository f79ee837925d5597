package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything read from the environment at startup.
type Config struct {
	Port        string
	Environment string // "development" or "production"

	// Database
	DBHost                 string
	DBPort                 string
	DBUser                 string
	DBPass                 string
	DBName                 string
	InstanceConnectionName string // Cloud SQL socket, production only

	// OTP policy
	OTPTTL         time.Duration
	OTPMaxAttempts int

	// Static per-km fare used when the client does not submit a price
	FarePerKm float64

	// SMTP (confirmation emails); empty host disables the channel
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	// Twilio SMS (OTP relay); empty SID disables the channel
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFrom       string

	JWTSecret string
}

// Load reads .env (when present) and the environment into a Config.
func Load() *Config {
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		if err := godotenv.Load(".env"); err != nil {
			if err = godotenv.Load("environments/.env.development"); err != nil {
				log.Println("no .env file found, using environment variables")
			}
		}
	}

	return &Config{
		Port:        envOr("PORT", "8080"),
		Environment: envOr("ENVIRONMENT", "development"),

		DBHost:                 envOr("DB_HOST", "localhost"),
		DBPort:                 envOr("DB_PORT", "5432"),
		DBUser:                 envOr("DB_USER", "postgres"),
		DBPass:                 os.Getenv("DB_PASS"),
		DBName:                 envOr("DB_NAME", "ridewise"),
		InstanceConnectionName: os.Getenv("INSTANCE_CONNECTION_NAME"),

		OTPTTL:         time.Duration(envIntOr("OTP_TTL_MINUTES", 5)) * time.Minute,
		OTPMaxAttempts: envIntOr("OTP_MAX_ATTEMPTS", 5),

		FarePerKm: envFloatOr("FARE_PER_KM", 20),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: envIntOr("SMTP_PORT", 587),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: envOr("SMTP_FROM", "no-reply@ridewise.app"),

		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFrom:       os.Getenv("TWILIO_PHONE_NUMBER"),

		JWTSecret: envOr("JWT_SECRET", "dev-secret-change-me"),
	}
}

// IsDevelopment reports whether error detail may be exposed to clients.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func envFloatOr(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using %g", key, v, fallback)
		return fallback
	}
	return f
}
