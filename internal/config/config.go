package config

import (
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env  string
	Port string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string
	DBRetries  int
	// AutoMigrate creates and alters tables on API start. Keep it off in production.
	AutoMigrate bool

	RedisAddr   string
	KafkaBroker string
	JWTSecret   string

	RateLimitRPS   float64
	RateLimitBurst int

	SchoolCacheTTL     time.Duration
	GeocoderURL        string
	GeocoderBBox       string
	GeocoderCacheTTL   time.Duration
	OutboxPollInterval time.Duration

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Load returns application config populated from environment variables with defaults.
// Call godotenv.Load before Load to pick up a local .env file.
func Load() App {
	return App{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnv("PORT", "3000"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "school"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBRetries:  intEnv("DB_RETRIES", 5),

		AutoMigrate: boolEnv("DB_AUTO_MIGRATE", false),

		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBroker: os.Getenv("KAFKA_BROKER"),
		JWTSecret:   os.Getenv("JWT_SECRET"),

		RateLimitRPS:   floatEnv("RATE_LIMIT_RPS", 5),
		RateLimitBurst: intEnv("RATE_LIMIT_BURST", 20),

		SchoolCacheTTL:     durationEnv("SCHOOL_CACHE_TTL", 10*time.Minute),
		GeocoderURL:        getEnv("GEOCODER_URL", "https://photon.komoot.io/api/"),
		GeocoderBBox:       os.Getenv("GEOCODER_BBOX"),
		GeocoderCacheTTL:   durationEnv("GEOCODER_CACHE_TTL", 24*time.Hour),
		OutboxPollInterval: durationEnv("OUTBOX_POLL_INTERVAL", 3*time.Second),

		ReadTimeout:  durationEnv("HTTP_READ_TIMEOUT", 5*time.Second),
		WriteTimeout: durationEnv("HTTP_WRITE_TIMEOUT", 10*time.Second),
		IdleTimeout:  durationEnv("HTTP_IDLE_TIMEOUT", 60*time.Second),
	}
}

func (a App) IsProduction() bool {
	return a.Env == "production"
}

// NewLogger builds the process logger for the configured environment.
func (a App) NewLogger() (*zap.Logger, error) {
	if a.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			zap.L().Warn("invalid duration, using fallback", zap.String("key", key), zap.Duration("fallback", fallback))
			return fallback
		}
		return d
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			zap.L().Warn("invalid int, using fallback", zap.String("key", key), zap.Int("fallback", fallback))
			return fallback
		}
		return parsed
	}
	return fallback
}

func floatEnv(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			zap.L().Warn("invalid float, using fallback", zap.String("key", key), zap.Float64("fallback", fallback))
			return fallback
		}
		return parsed
	}
	return fallback
}

func boolEnv(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		parsed, err := strconv.ParseBool(val)
		if err != nil {
			zap.L().Warn("invalid bool, using fallback", zap.String("key", key), zap.Bool("fallback", fallback))
			return fallback
		}
		return parsed
	}
	return fallback
}
