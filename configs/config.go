package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Port        string
	LogLevel    string
	CORSOrigins string

	DatabaseURL string
	RedisURL    string
	CacheTTL    time.Duration

	JWTSecret    string
	JWTExpiry    time.Duration
	CookieName   string
	CookieSecure bool

	AdminUsername string
	AdminEmail    string
	AdminPassword string
	AdminFullName string

	BrevoAPIKey     string
	EmailSender     string
	EmailSenderName string

	CloudinaryURL    string
	CloudinaryFolder string

	JobExpiryDays   int
	PresenceTimeout time.Duration
}

// Load reads .env (if present) and then the process environment.
func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	return &Config{
		Environment: getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:5173"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		CacheTTL:    getDuration("CACHE_TTL", 2*time.Minute),

		JWTSecret:    getEnv("JWT_SECRET", ""),
		JWTExpiry:    getDuration("JWT_EXPIRY", 72*time.Hour),
		CookieName:   getEnv("SESSION_COOKIE", "teacheron_token"),
		CookieSecure: getBool("COOKIE_SECURE", false),

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminFullName: getEnv("ADMIN_FULL_NAME", "TeacherOn Admin"),

		BrevoAPIKey:     getEnv("BREVO_API_KEY", ""),
		EmailSender:     getEnv("EMAIL_SENDER", ""),
		EmailSenderName: getEnv("EMAIL_SENDER_NAME", "TeacherOn"),

		CloudinaryURL:    getEnv("CLOUDINARY_URL", ""),
		CloudinaryFolder: getEnv("CLOUDINARY_FOLDER", "teacheron_profiles"),

		JobExpiryDays:   getInt("JOB_EXPIRY_DAYS", 30),
		PresenceTimeout: getPositiveDuration("PRESENCE_TIMEOUT", 5*time.Minute),
	}
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

// getPositiveDuration is getDuration with zero and negative values replaced
// by the fallback.
func getPositiveDuration(key string, fallback time.Duration) time.Duration {
	if v := getDuration(key, fallback); v > 0 {
		return v
	}
	return fallback
}

// JobExpiryDuration is how long a job may stay open before it is cancelled.
// Zero means expiry is disabled (JOB_EXPIRY_DAYS <= 0).
func (c *Config) JobExpiryDuration() time.Duration {
	if c.JobExpiryDays <= 0 {
		return 0
	}
	return time.Duration(c.JobExpiryDays) * 24 * time.Hour
}
