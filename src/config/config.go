package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	JWTSecret          string
	Port               string
	DatabasePath       string
	LogLevel           string
	MaxImportSizeBytes int64
	AuthEnabled        bool
	TokenExpiry        time.Duration

	// UTXO fee tracing. Tracing issues one lookup per input, so both the
	// request rate and the cache backend are configurable.
	KaspaAPIBaseURL   string
	TraceCacheBackend string // "memory" or "redis"
	RedisAddr         string
	TraceRatePerSec   float64
	TraceBurst        int
	TraceTimeout      time.Duration
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	jwtSecret := getEnv("JWT_SECRET", "your-very-secure-and-long-jwt-secret-key-for-hs256-minimum-32-bytes")
	if jwtSecret == "your-very-secure-and-long-jwt-secret-key-for-hs256-minimum-32-bytes" {
		log.Println("WARNING: Using default insecure JWT_SECRET. Set JWT_SECRET environment variable for production.")
	}

	tokenExpiryStr := getEnv("TOKEN_EXPIRY", "60m")
	tokenExpiry, err := time.ParseDuration(tokenExpiryStr)
	if err != nil {
		log.Printf("WARNING: Invalid TOKEN_EXPIRY format '%s'. Using default 60m. Error: %v", tokenExpiryStr, err)
		tokenExpiry = 60 * time.Minute
	}

	maxImportSizeBytesStr := getEnv("MAX_IMPORT_SIZE_BYTES", "10485760")
	maxImportSizeBytes, err := strconv.ParseInt(maxImportSizeBytesStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_IMPORT_SIZE_BYTES format '%s'. Using default 10MB. Error: %v", maxImportSizeBytesStr, err)
		maxImportSizeBytes = 10 * 1024 * 1024
	}

	traceRatePerSecStr := getEnv("TRACE_RATE_PER_SEC", "5")
	traceRatePerSec, err := strconv.ParseFloat(traceRatePerSecStr, 64)
	if err != nil || traceRatePerSec <= 0 {
		log.Printf("WARNING: Invalid TRACE_RATE_PER_SEC '%s'. Using default 5. Error: %v", traceRatePerSecStr, err)
		traceRatePerSec = 5
	}

	traceTimeoutStr := getEnv("TRACE_TIMEOUT", "10s")
	traceTimeout, err := time.ParseDuration(traceTimeoutStr)
	if err != nil {
		log.Printf("WARNING: Invalid TRACE_TIMEOUT format '%s'. Using default 10s. Error: %v", traceTimeoutStr, err)
		traceTimeout = 10 * time.Second
	}

	Cfg = &AppConfig{
		JWTSecret:          jwtSecret,
		Port:               getEnv("PORT", "8080"),
		DatabasePath:       getEnv("DATABASE_PATH", "./chainfolio.db"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		MaxImportSizeBytes: maxImportSizeBytes,
		AuthEnabled:        getEnv("AUTH_ENABLED", "false") == "true",
		TokenExpiry:        tokenExpiry,

		KaspaAPIBaseURL:   getEnv("KASPA_API_BASE_URL", "https://api.kaspa.org"),
		TraceCacheBackend: getEnv("TRACE_CACHE", "memory"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		TraceRatePerSec:   traceRatePerSec,
		TraceBurst:        getEnvAsInt("TRACE_BURST", 10),
		TraceTimeout:      traceTimeout,
	}

	if Cfg.TraceCacheBackend != "memory" && Cfg.TraceCacheBackend != "redis" {
		log.Printf("WARNING: Invalid TRACE_CACHE '%s'. Using 'memory'.", Cfg.TraceCacheBackend)
		Cfg.TraceCacheBackend = "memory"
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, TraceCache=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.TraceCacheBackend)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Integer value for %s not set or empty, using default: %d", key, fallback)
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}
