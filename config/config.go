package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Models    ModelConfig
	Ingestion IngestionConfig
	Retrieval RetrievalConfig
}

type AppConfig struct {
	Addr        string
	Environment string
	LogFilePath string
	UploadDir   string
}

type PostgresConfig struct {
	Host   string
	Port   int
	User   string
	Pass   string
	DBName string
}

// ConnString builds the DSN the same way the rest of the stack expects it.
func (p PostgresConfig) ConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		p.Host, p.Port, p.User, p.Pass, p.DBName)
}

type ModelConfig struct {
	ChatURL         string // Ollama /api/chat
	ChatModel       string
	EmbedURL        string // Ollama /api/embeddings
	EmbedModel      string
	RerankURL       string // cross-encoder /rerank endpoint
	RerankModel     string
	ClassifierURL   string // text-classification endpoint
	ClassifierModel string
	ConverterURL    string // PDF-to-text converter service
}

type IngestionConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

type RetrievalConfig struct {
	TopK  int // candidates fetched from the vector store
	KeepN int // chunks kept after reranking
}

// Load reads the environment into a Config. A missing .env file is fine,
// the process environment is used as-is.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Addr:        getEnv("SERVER_ADDR", ":8000"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogFilePath: getEnv("LOG_FILE_PATH", "logs/rolerag.log"),
			UploadDir:   getEnv("UPLOAD_DIR", "documents"),
		},
		Postgres: PostgresConfig{
			Host:   getEnv("PG_HOST", "localhost"),
			Port:   getEnvInt("PG_PORT", 5432),
			User:   getEnv("PG_USER", "postgres"),
			Pass:   getEnv("PG_PASS", "postgres"),
			DBName: getEnv("PG_DB_NAME", "rolerag"),
		},
		Models: ModelConfig{
			ChatURL:         getEnv("OLLAMA_CHAT_URL", "http://localhost:11434/api/chat"),
			ChatModel:       getEnv("OLLAMA_CHAT_MODEL", "llama3"),
			EmbedURL:        getEnv("OLLAMA_EMBEDDING_URL", "http://localhost:11434/api/embeddings"),
			EmbedModel:      getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			RerankURL:       getEnv("RERANKER_URL", "http://localhost:8580/rerank"),
			RerankModel:     getEnv("RERANKER_MODEL", "cross-encoder/ms-marco-MiniLM-L-6-v2"),
			ClassifierURL:   getEnv("CLASSIFIER_URL", "http://localhost:8581/classify"),
			ClassifierModel: getEnv("CLASSIFIER_MODEL", "ProsusAI/finbert"),
			ConverterURL:    getEnv("CONVERTER_URL", "http://localhost:5001/v1/convert/file"),
		},
		Ingestion: IngestionConfig{
			ChunkSize:    getEnvInt("CHUNK_SIZE", 1000),
			ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 150),
		},
		Retrieval: RetrievalConfig{
			TopK:  getEnvInt("RETRIEVAL_TOP_K", 10),
			KeepN: getEnvInt("RERANK_KEEP_N", 4),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("invalid value for %s: %q, using %d", key, value, fallback)
		return fallback
	}
	return n
}
