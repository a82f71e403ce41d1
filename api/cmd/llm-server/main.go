package main

import (
	"net/http"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/Tangdor/scene-analyzer-sam-llm-mobile/api/internal/config"
	"github.com/Tangdor/scene-analyzer-sam-llm-mobile/api/internal/handle"
	"github.com/Tangdor/scene-analyzer-sam-llm-mobile/api/internal/llm"
	"github.com/Tangdor/scene-analyzer-sam-llm-mobile/api/internal/llm/gemini"
	"github.com/Tangdor/scene-analyzer-sam-llm-mobile/api/internal/llm/llamacpp"
)

func main() {
	cfg := config.Load()

	if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
		cfg.LLMPort = p
	}

	engines := &llm.Engines{
		Llama:   llamacpp.New(cfg.LlamaServerURL),
		Gemini:  gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel),
		Default: cfg.LLMEngine,
	}
	h := handle.New(nil, engines)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/llm", h.LLM)

	addr := ":" + cfg.LLMPort
	log.Printf("llm-server listening on %s (default engine: %s)", addr, cfg.LLMEngine)
	log.Fatal(http.ListenAndServe(addr, mux))
}
