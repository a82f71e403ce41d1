package llamacpp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Tangdor/scene-analyzer-sam-llm-mobile/api/internal/llm"
)

// Engine talks to a llama.cpp server running the local model.
type Engine struct {
	BaseURL string
	httpc   *http.Client
}

func New(baseURL string) *Engine {
	return &Engine{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpc:   &http.Client{Timeout: 180 * time.Second},
	}
}

func (e *Engine) Name() string { return "llama" }

// Complete posts the formatted prompt to the /completion endpoint with the
// given sampling settings and returns the generated continuation.
func (e *Engine) Complete(ctx context.Context, prompt string, p llm.SamplingParams) (string, error) {
	if e.BaseURL == "" {
		return "", fmt.Errorf("llama server URL not set")
	}

	body := map[string]any{
		"prompt":         prompt,
		"temperature":    p.Temperature,
		"top_p":          p.TopP,
		"repeat_penalty": p.RepetitionPenalty,
		"n_predict":      p.MaxNewTokens,
		"stop":           []string{p.Stop},
	}
	payload, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, "POST", e.BaseURL+"/completion", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		x, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("llama %d: %s", resp.StatusCode, strings.TrimSpace(string(x)))
	}

	var raw struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", err
	}

	return raw.Content, nil
}
