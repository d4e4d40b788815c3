package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Generation fallback policies.
const (
	FallbackFail    = "fail"
	FallbackDegrade = "degrade"
)

// Places cache backends.
const (
	CacheOff    = "off"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type Config struct {
	// Server
	Port        string
	AppEnv      string
	CORSOrigins string

	RateLimitMax    int
	RateLimitWindow time.Duration

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	SeedDemoUser bool

	// JWT
	JWTSecret string
	JWTExpiry time.Duration

	// Text generation (OpenAI-compatible chat completions)
	DeepSeekAPIKey string
	DeepSeekAPIURL string
	DeepSeekModel  string
	AITimeout      time.Duration

	// GENERATION_FALLBACK: "fail" surfaces upstream errors, "degrade" substitutes a placeholder plan.
	GenerationFallback string

	// Places lookup (AMap)
	AMapAPIKey  string
	AMapAPIURL  string
	MapsTimeout time.Duration

	PlacesCache    string
	PlacesCacheTTL time.Duration

	// Redis (PLACES_CACHE=redis)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Observability
	LogLevel         string
	SentryDSN        string
	LogRetentionDays int
}

func Load() *Config {
	if os.Getenv("APP_ENV") == "development" {
		_ = godotenv.Load()
	}

	appEnv := getEnv("APP_ENV", "development")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		AppEnv:      appEnv,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),

		RateLimitMax:    getEnvInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow: parseDuration(getEnv("RATE_LIMIT_WINDOW", "15m"), 15*time.Minute),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "travel_assistant"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		SeedDemoUser: getEnvBool("SEED_DEMO_USER", appEnv == "development"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTExpiry: parseDuration(getEnv("JWT_EXPIRY", "168h"), 7*24*time.Hour),

		DeepSeekAPIKey: getEnv("DEEPSEEK_API_KEY", ""),
		DeepSeekAPIURL: getEnv("DEEPSEEK_API_URL", "https://api.deepseek.com/v1/chat/completions"),
		DeepSeekModel:  getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
		AITimeout:      parseDuration(getEnv("AI_TIMEOUT", "60s"), 60*time.Second),

		GenerationFallback: getEnv("GENERATION_FALLBACK", FallbackFail),

		AMapAPIKey:  getEnv("AMAP_API_KEY", ""),
		AMapAPIURL:  getEnv("AMAP_API_URL", "https://restapi.amap.com/v3/place/text"),
		MapsTimeout: parseDuration(getEnv("MAPS_TIMEOUT", "10s"), 10*time.Second),

		PlacesCache:    getEnv("PLACES_CACHE", CacheOff),
		PlacesCacheTTL: parseDuration(getEnv("PLACES_CACHE_TTL", "24h"), 24*time.Hour),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		LogLevel:         getEnv("LOG_LEVEL", "info"),
		SentryDSN:        getEnv("SENTRY_DSN", ""),
		LogRetentionDays: getEnvInt("LOG_RETENTION_DAYS", 30),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// IsProduction reports whether error details must be hidden from clients.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return b
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
