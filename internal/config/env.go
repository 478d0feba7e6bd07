package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string

	// Backends: which implementation serves each pluggable concern.
	VectorBackend  string // "pgvector" or "memory"
	StorageBackend string // "local" or "s3"
	PDFDir         string

	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string

	AIAPIKey       string
	EmbedProvider  string // "gemini", "ollama" or "mock"
	EmbedModel     string
	EmbedDim       int
	LLMProvider    string // "gemini", "ollama" or "mock"
	GenModel       string
	OllamaBaseURL  string
	LLMTimeout     time.Duration

	TopK                 int
	MaxTurns             int
	SessionTimeout       time.Duration
	SessionSweepInterval time.Duration
}

// LoadConfig loads the environment variables and returns the config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		VectorBackend:  getEnv("VECTOR_BACKEND", "pgvector"),
		StorageBackend: getEnv("STORAGE_BACKEND", "local"),
		PDFDir:         getEnv("PDF_DIR", "./pdfs"),

		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", "deepread-docs"),

		AIAPIKey:      getEnv("GEMINI_API_KEY", ""),
		EmbedProvider: getEnv("EMBED_PROVIDER", "gemini"),
		EmbedModel:    getEnv("EMBED_MODEL", "text-embedding-004"),
		EmbedDim:      getEnvInt("EMBED_DIM", 768),
		LLMProvider:   getEnv("LLM_PROVIDER", "gemini"),
		GenModel:      getEnv("GEN_MODEL", "gemini-1.5-flash"),
		OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		LLMTimeout:    getEnvDuration("LLM_TIMEOUT", 2*time.Minute),

		TopK:                 getEnvInt("TOP_K", 5),
		MaxTurns:             getEnvInt("MAX_TURNS", 10),
		SessionTimeout:       getEnvDuration("SESSION_TIMEOUT", 30*time.Minute),
		SessionSweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", 0),
	}

	if cfg.VectorBackend == "pgvector" && cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("WARN: %s=%q not a duration, using default %s", key, v, def)
		return def
	}
	return d
}
