package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseFile         string        // Optional: path to SQLite database file (default: ./shiftclock.db)
	PepperFile           string        // Optional: path to file containing pepper for password hashing (default: ./pepper)
	CookieName           string        // Optional: session cookie name (default: shiftclock_session)
	SecureCookies        bool          // Optional: mark session cookies Secure (default: true; disable for local dev only)
	SessionTTL           time.Duration // Optional: session lifetime (default: 168h)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)

	// Bootstrap admin, seeded when the store is empty. Required on first
	// start, ignored afterwards.
	BootstrapAdminEmpID    string
	BootstrapAdminName     string
	BootstrapAdminEmail    string
	BootstrapAdminPassword string
	BootstrapTeamName      string
}

func LoadConfig() Config {
	return Config{
		DatabaseFile:         getEnvOrDefault("IDENTITY_DATABASE_FILE", "shiftclock.db"),
		PepperFile:           getEnvOrDefault("IDENTITY_PEPPER_FILE", "pepper"),
		CookieName:           getEnvOrDefault("IDENTITY_COOKIE_NAME", "shiftclock_session"),
		SecureCookies:        getEnvBoolOrDefault("IDENTITY_SECURE_COOKIES", true),
		SessionTTL:           getEnvDurationOrDefault("IDENTITY_SESSION_TTL", 7*24*time.Hour),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),

		BootstrapAdminEmpID:    os.Getenv("IDENTITY_BOOTSTRAP_ADMIN_EMP_ID"),
		BootstrapAdminName:     os.Getenv("IDENTITY_BOOTSTRAP_ADMIN_NAME"),
		BootstrapAdminEmail:    os.Getenv("IDENTITY_BOOTSTRAP_ADMIN_EMAIL"),
		BootstrapAdminPassword: os.Getenv("IDENTITY_BOOTSTRAP_ADMIN_PASSWORD"),
		BootstrapTeamName:      os.Getenv("IDENTITY_BOOTSTRAP_TEAM_NAME"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Integer values are read as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
