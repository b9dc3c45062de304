package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Queue      QueueConfig
	Session    SessionConfig
	Clustering ClusteringConfig
	Board      BoardConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	ApiKey             string // shared secret for the ingest webhook (X-API-Key)
}

type DatabaseConfig struct {
	Connection string
}

type QueueConfig struct {
	Name              string
	WorkerCount       int
	MaxAttempts       int
	VisibilityTimeout time.Duration
	RetryBaseDelay    time.Duration
}

type SessionConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

type ClusteringConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	GeminiApiKey      string
	OllamaBaseURL     string
	OllamaModel       string
	DefaultThreshold  float32
	CatchAllLabel     string
	EmbedTimeout      time.Duration
}

type BoardConfig struct {
	BaseURL        string
	ApiKey         string
	RequestTimeout time.Duration
	MaxElapsed     time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			ApiKey:             getEnv("AUTOIDEAS_API_KEY", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Queue: QueueConfig{
			Name:              getEnv("QUEUE_NAME", "idea_jobs"),
			WorkerCount:       getEnvAsInt("QUEUE_WORKER_COUNT", 4),
			MaxAttempts:       getEnvAsInt("QUEUE_MAX_ATTEMPTS", 3),
			VisibilityTimeout: getEnvAsDuration("QUEUE_VISIBILITY_TIMEOUT", 2*time.Minute),
			RetryBaseDelay:    getEnvAsDuration("QUEUE_RETRY_BASE_DELAY", 5*time.Second),
		},
		Session: SessionConfig{
			IdleTTL:       getEnvAsDuration("SESSION_IDLE_TTL", 24*time.Hour),
			SweepInterval: getEnvAsDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),
		},
		Clustering: ClusteringConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			GeminiApiKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			DefaultThreshold:  getEnvAsFloat32("CLUSTERING_THRESHOLD", 0.78),
			CatchAllLabel:     getEnv("CLUSTERING_CATCHALL_LABEL", "Unsorted ideas"),
			EmbedTimeout:      getEnvAsDuration("CLUSTERING_EMBED_TIMEOUT", 10*time.Second),
		},
		Board: BoardConfig{
			BaseURL:        getEnv("BOARD_API_BASE_URL", "https://api.miro.com/v2"),
			ApiKey:         getEnv("BOARD_API_KEY", ""),
			RequestTimeout: getEnvAsDuration("BOARD_REQUEST_TIMEOUT", 15*time.Second),
			MaxElapsed:     getEnvAsDuration("BOARD_RETRY_MAX_ELAPSED", 30*time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat32(key string, fallback float32) float32 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 32); err == nil {
		return float32(value)
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
