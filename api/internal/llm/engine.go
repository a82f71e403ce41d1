package llm

import (
	"context"
	"fmt"
	"strings"
)

// SamplingParams are the decoding settings passed to the generation model.
type SamplingParams struct {
	Temperature       float64
	TopP              float64
	RepetitionPenalty float64
	MaxNewTokens      int
	Stop              string
}

// DefaultSampling is the fixed decoding configuration of the llm endpoint.
var DefaultSampling = SamplingParams{
	Temperature:       0.8,
	TopP:              0.85,
	RepetitionPenalty: 1.2,
	MaxNewTokens:      160,
	Stop:              EndOfTurn,
}

// Engine continues generation from a formatted prompt and returns the raw
// decoded text.
type Engine interface {
	Name() string
	Complete(ctx context.Context, prompt string, params SamplingParams) (string, error)
}

// Engines holds the configured generation engines.
type Engines struct {
	Llama  Engine
	Gemini Engine

	// Default names the engine used when a request does not pick one.
	Default string
}

// Get resolves an engine by name, falling back to the default for an empty
// name.
func (e *Engines) Get(name string) (Engine, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = strings.ToLower(strings.TrimSpace(e.Default))
	}

	switch name {
	case "", "llama", "local":
		if e.Llama != nil {
			return e.Llama, nil
		}
	case "gemini":
		if e.Gemini != nil {
			return e.Gemini, nil
		}
	}
	return nil, fmt.Errorf("unknown engine %q", name)
}
