package main

import (
	"net/http"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/Tangdor/scene-analyzer-sam-llm-mobile/api/internal/config"
	"github.com/Tangdor/scene-analyzer-sam-llm-mobile/api/internal/handle"
	"github.com/Tangdor/scene-analyzer-sam-llm-mobile/api/internal/vision"
)

func main() {
	cfg := config.Load()

	if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
		cfg.CVPort = p
	}

	detector, err := vision.NewDetector(cfg.ModelPath, cfg.ModelConfigPath, cfg.LabelsPath)
	if err != nil {
		log.Fatalf("detector init: %v", err)
	}
	defer detector.Close()
	log.Printf("detection model loaded from %s (%d labels)", cfg.ModelPath, len(detector.Labels()))

	h := handle.New(detector, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/segment", h.Segment)

	addr := ":" + cfg.CVPort
	log.Printf("cv-server listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}
