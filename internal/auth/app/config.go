package app

import (
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/assettrack/internal/auth/authlog"
	"github.com/aussiebroadwan/assettrack/internal/auth/session"
	"github.com/aussiebroadwan/assettrack/pkg/jwtx"
)

type Config struct {
	Issuer string // Shown in authenticator apps and used as the cookie JWT issuer (default: AssetTrack)

	DatabaseFile              string        // Path to SQLite database file (default: ./assettrack.db)
	PepperFile                string        // Path to file containing pepper for password hashing (default: ./pepper)
	SessionSecretFile         string        // Path to the HMAC secret signing session cookies (default: ./session.key)
	PreviousSessionSecretFile string        // Optional: retired cookie secret, still accepted for verification
	SessionStore              string        // Session backend: sqlite or memory (default: sqlite)
	SessionTTL                time.Duration // Sliding session lifetime (default: 30 days)
	SessionCookieSecure       bool          // Force the Secure cookie attribute (default: false, set on TLS anyway)
	AuthLogDir                string        // Directory for daily auth event logs (default: LOGS/auth)
	HashConcurrency           int           // Concurrent password hash operations (default: NumCPU)
	RolesFile                 string        // Optional: YAML role definitions seeded on startup
	CORSAllowedOrigins        []string      // Optional: origins allowed to call the API with credentials
	TrustedProxies            []string      // Optional: proxy IPs/CIDRs whose X-Forwarded-For is believed (default: none)
	SetupResetToken           string        // Optional: enables POST /api/setup/reset with this token
	MaxFailedAttempts         int           // Failed password/MFA attempts before lockout (default: 5)
	LockoutRefill             time.Duration // Time for one locked-out attempt to be restored (default: 1m)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		Issuer:                    getEnvOrDefault("AUTH_ISSUER", "AssetTrack"),
		DatabaseFile:              getEnvOrDefault("AUTH_DATABASE_FILE", "assettrack.db"),
		PepperFile:                getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		SessionSecretFile:         getEnvOrDefault("SESSION_SECRET_FILE", "session.key"),
		PreviousSessionSecretFile: os.Getenv("SESSION_PREVIOUS_SECRET_FILE"),
		SessionStore:              getEnvOrDefault("SESSION_STORE", session.BackendSQLite),
		SessionTTL:                getEnvDurationOrDefault("SESSION_TTL", jwtx.DefaultSessionTTL),
		SessionCookieSecure:       getEnvBoolOrDefault("SESSION_COOKIE_SECURE", false),
		AuthLogDir:                getEnvOrDefault("AUTH_LOG_DIR", authlog.DefaultDir),
		HashConcurrency:           getEnvIntOrDefault("AUTH_HASH_CONCURRENCY", runtime.NumCPU()),
		RolesFile:                 os.Getenv("ROLES_FILE"),
		CORSAllowedOrigins:        getEnvListOrDefault("CORS_ALLOWED_ORIGINS", nil),
		TrustedProxies:            getEnvListOrDefault("TRUSTED_PROXIES", nil),
		SetupResetToken:           os.Getenv("SETUP_RESET_TOKEN"),
		MaxFailedAttempts:         getEnvIntOrDefault("AUTH_MAX_FAILED_ATTEMPTS", 5),
		LockoutRefill:             getEnvDurationOrDefault("AUTH_LOCKOUT_REFILL", time.Minute),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
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

// getEnvListOrDefault splits a comma separated variable, dropping blanks.
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for part := range strings.SplitSeq(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
