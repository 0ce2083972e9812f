package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	AI       AIConfig
	Auth     AuthConfig
	Billing  BillingConfig
	Crawler  CrawlerConfig
}

type ServerConfig struct {
	Port        string
	Environment string
	BaseURL     string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	PoolSize int
}

type AIConfig struct {
	Provider    string
	OpenAIKey   string
	OpenAIModel string
	GeminiKey   string
	GeminiModel string
}

type AuthConfig struct {
	JWTSecret string
}

type BillingConfig struct {
	StripeSecret  string
	WebhookSecret string
	ProPriceID    string
}

type CrawlerConfig struct {
	Timeout      time.Duration
	MaxBodyBytes int64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisPool, _ := strconv.Atoi(getEnv("REDIS_POOL_SIZE", "10"))
	maxOpen, _ := strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "25"))
	maxIdle, _ := strconv.Atoi(getEnv("DB_MAX_IDLE_CONNS", "10"))
	crawlTimeout, _ := strconv.Atoi(getEnv("CRAWL_TIMEOUT_SECONDS", "10"))
	maxBody, _ := strconv.ParseInt(getEnv("CRAWL_MAX_BODY_BYTES", "5242880"), 10, 64)

	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			BaseURL:     getEnv("APP_BASE_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			DBName:       getEnv("DB_NAME", "contentforge"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: maxOpen,
			MaxIdleConns: maxIdle,
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
			PoolSize: redisPool,
		},
		AI: AIConfig{
			Provider:    getEnv("AI_PROVIDER", "openai"),
			OpenAIKey:   getEnv("OPENAI_API_KEY", ""),
			OpenAIModel: getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			GeminiKey:   getEnv("GOOGLE_API_KEY", ""),
			GeminiModel: getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("AUTH_JWT_SECRET", ""),
		},
		Billing: BillingConfig{
			StripeSecret:  getEnv("STRIPE_SECRET", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			ProPriceID:    getEnv("STRIPE_PRO_PRICE_ID", ""),
		},
		Crawler: CrawlerConfig{
			Timeout:      time.Duration(crawlTimeout) * time.Second,
			MaxBodyBytes: maxBody,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
