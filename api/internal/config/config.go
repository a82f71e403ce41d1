package config

import (
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	CVPort  string
	LLMPort string

	// detection model
	ModelPath       string
	ModelConfigPath string
	LabelsPath      string

	// generation engines
	LLMEngine      string
	LlamaServerURL string
	GeminiAPIKey   string
	GeminiModel    string

	// telegram front-end
	CVServerURL  string
	LLMServerURL string
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing required env %s", k)
	}
	return v
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// MustTelegramToken returns TELEGRAM_BOT_TOKEN and exits when it is unset.
// Only the bot binary requires it, so it is not part of Load.
func MustTelegramToken() string {
	return mustEnv("TELEGRAM_BOT_TOKEN")
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		CVPort:  getEnv("CV_PORT", "5000"),
		LLMPort: getEnv("LLM_PORT", "5001"),

		ModelPath:       getEnv("MODEL_PATH", "models/scene-seg.pb"),
		ModelConfigPath: getEnv("MODEL_CONFIG_PATH", "models/scene-seg.pbtxt"),
		LabelsPath:      getEnv("LABELS_PATH", "models/labels.txt"),

		LLMEngine:      getEnv("LLM_ENGINE", "llama"),
		LlamaServerURL: getEnv("LLAMA_SERVER_URL", "http://127.0.0.1:8080"),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemma-3-1b-it"),

		CVServerURL:  getEnv("CV_SERVER_URL", "http://127.0.0.1:5000"),
		LLMServerURL: getEnv("LLM_SERVER_URL", "http://127.0.0.1:5001"),
	}
}
