package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver       string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	SQLitePath     string
	DBMaxOpenConns int

	JWTSecret string
	JWTTTL    time.Duration

	ServerPort  string
	LogMode     string
	CORSOrigins string

	RedisURL            string
	LeaderboardCacheTTL time.Duration
	ReconcileCron       string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	maxOpen, err := getEnvInt("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return nil, err
	}
	ttlHours, err := getEnvInt("JWT_TTL_HOURS", 72)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := getEnvDuration("LEADERBOARD_CACHE_TTL", 30*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DBDriver:       strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "learning_platform"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		SQLitePath:     getEnv("SQLITE_PATH", "learning_platform.db"),
		DBMaxOpenConns: maxOpen,

		JWTSecret: getEnv("JWT_SECRET", "secret"),
		JWTTTL:    time.Duration(ttlHours) * time.Hour,

		ServerPort:  getEnv("SERVER_PORT", "8080"),
		LogMode:     strings.ToLower(getEnv("LOG_MODE", "development")),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		RedisURL:            getEnv("REDIS_URL", ""),
		LeaderboardCacheTTL: cacheTTL,
		ReconcileCron:       getEnv("RECONCILE_CRON", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL_HOURS must be positive")
	}
	return nil
}

// PostgresDSN builds the connection string for gorm.io/driver/postgres.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
