package generator

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAILLM implements LLMClient using the official openai-go SDK (chat completions).
type OpenAILLM struct {
	Settings LLMSettings
	Opts     []option.RequestOption
}

func NewOpenAILLMFromConfig(cfg *LLMSettings) (*OpenAILLM, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAILLM{Settings: *cfg, Opts: opts}, nil
}

func (o *OpenAILLM) Complete(ctx context.Context, req Request) (string, error) {
	msgs := []openai.ChatCompletionMessageParamUnion{}
	if req.System != "" {
		msgs = append(msgs, openai.SystemMessage(req.System))
	}
	if len(req.Attachments) == 0 {
		msgs = append(msgs, openai.UserMessage(req.User))
	} else {
		parts := []openai.ChatCompletionContentPartUnionParam{openai.TextContentPart(req.User)}
		for _, a := range req.Attachments {
			parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL: dataURI(a),
			}))
		}
		msgs = append(msgs, openai.UserMessage(parts))
	}
	return o.complete(ctx, req.Model, req.Temperature, msgs)
}

// StartChat keeps the history client side; chat completions have no server session.
func (o *OpenAILLM) StartChat(_ context.Context, cfg ChatConfig) (ChatHandle, error) {
	return &openAIChat{llm: o, cfg: cfg}, nil
}

func (o *OpenAILLM) complete(ctx context.Context, variant ModelVariant, temperature float32, msgs []openai.ChatCompletionMessageParamUnion) (string, error) {
	if temperature == 0 {
		temperature = Temperature
	}
	client := openai.NewClient(o.Opts...)
	model := o.Settings.ModelName(variant)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    msgs,
		Temperature: openai.Float(wireTemperature(temperature)),
	})
	if err != nil {
		return "", fmt.Errorf("%w: openai %s: %w", ErrBackendCall, model, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai %s: %w", ErrBackendCall, model, errors.New("empty choices"))
	}
	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %w", ErrBackendCall, ErrEmptyResponse)
	}
	return text, nil
}

type openAIChat struct {
	llm     *OpenAILLM
	cfg     ChatConfig
	history []Message
}

func (c *openAIChat) Send(ctx context.Context, message string) (string, error) {
	msgs := []openai.ChatCompletionMessageParamUnion{openai.SystemMessage(c.cfg.System)}
	for _, h := range c.history {
		switch h.Role {
		case RoleModel:
			msgs = append(msgs, openai.ChatCompletionMessageParamOfAssistant(h.Content))
		default:
			msgs = append(msgs, openai.UserMessage(h.Content))
		}
	}
	msgs = append(msgs, openai.UserMessage(message))

	reply, err := c.llm.complete(ctx, c.cfg.Model, c.cfg.Temperature, msgs)
	if err != nil {
		return "", err
	}
	c.history = append(c.history,
		Message{Role: RoleUser, Content: message},
		Message{Role: RoleModel, Content: reply},
	)
	return reply, nil
}

// wireTemperature widens t to the shortest float64 with the same float32 value, so 0.3 is
// sent as 0.3 and not 0.30000001192092896.
func wireTemperature(t float32) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(float64(t), 'g', -1, 32), 64)
	if err != nil {
		return float64(t)
	}
	return v
}

func dataURI(a Attachment) string {
	var sb strings.Builder
	sb.WriteString("data:")
	sb.WriteString(a.MIMEType)
	sb.WriteString(";base64,")
	sb.WriteString(base64.StdEncoding.EncodeToString(a.Data))
	return sb.String()
}
