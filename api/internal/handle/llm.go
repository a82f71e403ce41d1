package handle

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Tangdor/scene-analyzer-sam-llm-mobile/api/internal/llm"
)

type LLMRequest struct {
	Prompt string `json:"prompt"`
	Engine string `json:"engine,omitempty"`
}

type LLMResponse struct {
	Response string `json:"response"`
}

// LLM formats the prompt into the chat template, runs a generation pass and
// returns the assistant's reply.
func (h *Handle) LLM(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}

	var req LLMRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		writeError(w, http.StatusBadRequest, "No prompt provided")
		return
	}

	deadline := 180 * time.Second
	if ts := r.Header.Get("X-Request-Timeout"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	} else if ts := r.URL.Query().Get("timeoutSec"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	}
	ctx, cancel := context.WithTimeout(r.Context(), deadline)
	defer cancel()

	engine, err := h.engines.Get(req.Engine)
	if err != nil {
		http.Error(w, "llm error: "+err.Error(), http.StatusBadGateway)
		return
	}

	out, err := engine.Complete(ctx, llm.FormatPrompt(prompt), llm.DefaultSampling)
	if err != nil {
		log.Debugf("[LLM] %s generation failed: %v", engine.Name(), err)
		http.Error(w, "llm error: "+err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, LLMResponse{Response: llm.ExtractReply(out)})
}
