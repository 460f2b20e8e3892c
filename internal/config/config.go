package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Chat     ChatConfig
	Scraper  ScraperConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	Groq  string
	Apify string
}

type AIConfig struct {
	LLMProvider   string // "groq" or "ollama"
	LLMModel      string // e.g. "llama3-8b-8192", "llama3"
	GroqBaseURL   string
	OllamaBaseURL string
}

type ChatConfig struct {
	GreetingPhrases   []string
	ClosingPhrases    []string
	MaxHistoryTurns   int
	SessionTTLMinutes int
}

type ScraperConfig struct {
	ActorID             string
	ResultsPerPage      int
	MaxProfilesPerQuery int
	WaitForFinish       int // seconds the run endpoint blocks before polling
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			Groq:  getEnv("GROQ_API_KEY", ""),
			Apify: getEnv("APIFY_API_TOKEN", ""),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "groq"),
			LLMModel:      getEnv("LLM_MODEL", "llama3-8b-8192"),
			GroqBaseURL:   getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		},
		Chat: ChatConfig{
			GreetingPhrases:   getEnvAsList("CHAT_GREETING_PHRASES", []string{"hi", "hello", "hey"}),
			ClosingPhrases:    getEnvAsList("CHAT_CLOSING_PHRASES", []string{"no", "thanks", "thank you", "ok", "okay", "that's all", "bye"}),
			MaxHistoryTurns:   getEnvAsInt("CHAT_MAX_HISTORY_TURNS", 20),
			SessionTTLMinutes: getEnvAsInt("CHAT_SESSION_TTL_MINUTES", 60),
		},
		Scraper: ScraperConfig{
			ActorID:             getEnv("APIFY_ACTOR_ID", "clockworks/free-tiktok-scraper"),
			ResultsPerPage:      getEnvAsInt("SCRAPER_RESULTS_PER_PAGE", 3),
			MaxProfilesPerQuery: getEnvAsInt("SCRAPER_MAX_PROFILES_PER_QUERY", 1),
			WaitForFinish:       getEnvAsInt("SCRAPER_WAIT_FOR_FINISH", 300),
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

// getEnvAsList splits a comma-separated value; empty items are dropped.
func getEnvAsList(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
