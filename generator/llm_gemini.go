package generator

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiLLM implements LLMClient on the google genai SDK.
type GeminiLLM struct {
	client   *genai.Client
	settings LLMSettings
}

func NewGeminiLLM(ctx context.Context, cfg *LLMSettings) (*GeminiLLM, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiLLM{client: client, settings: *cfg}, nil
}

func (g *GeminiLLM) Complete(ctx context.Context, req Request) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(req.User)}
	for _, a := range req.Attachments {
		parts = append(parts, genai.NewPartFromBytes(a.Data, a.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	model := g.settings.ModelName(req.Model)
	resp, err := g.client.Models.GenerateContent(ctx, model, contents, contentConfig(req.System, req.Temperature))
	if err != nil {
		return "", fmt.Errorf("%w: gemini %s: %w", ErrBackendCall, model, err)
	}
	return responseText(resp)
}

func (g *GeminiLLM) StartChat(ctx context.Context, cfg ChatConfig) (ChatHandle, error) {
	model := g.settings.ModelName(cfg.Model)
	chat, err := g.client.Chats.Create(ctx, model, contentConfig(cfg.System, cfg.Temperature), nil)
	if err != nil {
		return nil, fmt.Errorf("gemini %s: %w", model, err)
	}
	return &geminiChat{chat: chat, model: model}, nil
}

type geminiChat struct {
	chat  *genai.Chat
	model string
}

func (c *geminiChat) Send(ctx context.Context, message string) (string, error) {
	resp, err := c.chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		return "", fmt.Errorf("%w: gemini %s: %w", ErrBackendCall, c.model, err)
	}
	return responseText(resp)
}

func contentConfig(system string, temperature float32) *genai.GenerateContentConfig {
	if temperature == 0 {
		temperature = Temperature
	}
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(system)},
		}
	}
	return config
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: %w", ErrBackendCall, ErrEmptyResponse)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %w", ErrBackendCall, ErrEmptyResponse)
	}
	return text, nil
}
