package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Blob     BlobConfig
	Search   SearchConfig
}

type AppConfig struct {
	Port               string
	Title              string
	Environment        string
	LogFilePath        string
	SocketLogFilePath  string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	// ViewerURL is the dataset viewer the app url points at after an upload.
	ViewerURL  string
	SessionTTL time.Duration
}

type DatabaseConfig struct {
	// Connection is optional; without it entities live in process memory.
	Connection string
}

type BlobConfig struct {
	Bucket          string
	CredentialsFile string
}

type SearchConfig struct {
	SplunkURL        string
	SplunkToken      string
	ElasticsearchURL string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Title:              getEnv("APP_TITLE", "Pivots"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			SocketLogFilePath:  getEnv("SOCKET_LOG_FILE_PATH", "logs/graph_socket.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			ViewerURL:          getEnv("VIEWER_URL", "http://localhost:8080/graph/graph.html?type=vgraph"),
			SessionTTL:         getEnvAsDuration("SESSION_TTL", 30*time.Minute),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Blob: BlobConfig{
			Bucket:          getEnv("BLOB_BUCKET", ""),
			CredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		},
		Search: SearchConfig{
			SplunkURL:        getEnv("SPLUNK_URL", "https://localhost:8089"),
			SplunkToken:      getEnv("SPLUNK_TOKEN", ""),
			ElasticsearchURL: getEnv("ELASTICSEARCH_URL", "http://localhost:9200"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if seconds, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
