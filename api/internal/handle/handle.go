package handle

import (
	"encoding/json"
	"net/http"

	"github.com/Tangdor/scene-analyzer-sam-llm-mobile/api/internal/llm"
	"github.com/Tangdor/scene-analyzer-sam-llm-mobile/api/internal/vision"
)

// Handle carries the services injected into the request handlers. Both are
// constructed once at startup and treated as immutable afterwards.
type Handle struct {
	detector vision.ObjectDetector
	engines  *llm.Engines
}

// New builds a Handle. Either service may be nil when the binary does not
// serve the corresponding endpoint.
func New(detector vision.ObjectDetector, engines *llm.Engines) *Handle {
	return &Handle{
		detector: detector,
		engines:  engines,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
