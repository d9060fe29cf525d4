package generator

import (
	"context"
	"fmt"
)

// Temperature is applied to every generation call. Edits should stay conservative.
const Temperature float32 = 0.3

// ModelVariant selects which backend model a call uses.
type ModelVariant string

const (
	ModelFast ModelVariant = "fast"
	ModelPro  ModelVariant = "pro"
)

// ParseModelVariant validates a variant name.
func ParseModelVariant(s string) (ModelVariant, error) {
	switch ModelVariant(s) {
	case ModelFast, ModelPro:
		return ModelVariant(s), nil
	}
	return "", fmt.Errorf("unknown model variant %q (want fast or pro)", s)
}

// Attachment is an opaque binary part sent after the user prompt.
type Attachment struct {
	Data     []byte
	MIMEType string
}

// Request is a single generation call.
type Request struct {
	System      string
	User        string
	Model       ModelVariant
	Attachments []Attachment
	Temperature float32
}

// ChatConfig describes a new multi-turn session.
type ChatConfig struct {
	System      string
	Model       ModelVariant
	Temperature float32
}

// LLMClient abstracts the completion service so providers can be swapped or mocked.
type LLMClient interface {
	Complete(ctx context.Context, req Request) (string, error)
	StartChat(ctx context.Context, cfg ChatConfig) (ChatHandle, error)
}

// ChatHandle is the provider's stateful conversation. Prior turns live inside it.
type ChatHandle interface {
	Send(ctx context.Context, message string) (string, error)
}

// LLMSettings is the provider configuration shared by the concrete clients.
type LLMSettings struct {
	Provider  string
	APIKey    string
	BaseURL   string
	FastModel string
	ProModel  string
}

// ModelName maps a variant to the configured backend model.
func (s *LLMSettings) ModelName(v ModelVariant) string {
	if v == ModelPro {
		return s.ProModel
	}
	return s.FastModel
}

func (s *LLMSettings) validate() error {
	if s == nil {
		return fmt.Errorf("llm config is nil")
	}
	if s.APIKey == "" {
		return fmt.Errorf("%w: provide llm.api_key", ErrMissingAPIKey)
	}
	if s.FastModel == "" || s.ProModel == "" {
		return fmt.Errorf("llm fast_model and pro_model are required")
	}
	return nil
}

// NewLLM builds the client for the configured provider.
func NewLLM(ctx context.Context, cfg *LLMSettings) (LLMClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("llm config is nil")
	}
	switch cfg.Provider {
	case "", "gemini":
		return NewGeminiLLM(ctx, cfg)
	case "openai":
		return NewOpenAILLMFromConfig(cfg)
	case "deepseek":
		// OpenAI-compatible endpoint, base_url is mandatory.
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return NewOpenAILLMFromConfig(cfg)
	case "mock":
		return MockLLM{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.Provider)
	}
}
