package generator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Agent runs one-shot editorial tasks: one request, one response.
type Agent struct {
	llm    LLMClient
	logger zerolog.Logger
}

func NewAgent(llm LLMClient) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	return &Agent{llm: llm, logger: log.Logger}, nil
}

// WithLogger replaces the agent's logger.
func (a *Agent) WithLogger(l zerolog.Logger) *Agent {
	a.logger = l
	return a
}

// LLM exposes the underlying client so other components share the same backend.
func (a *Agent) LLM() LLMClient {
	return a.llm
}

// Run executes task with its own label and model variant.
func (a *Agent) Run(ctx context.Context, task TaskTemplate, draft, rulesContext string) (Result, error) {
	return a.RunLabel(ctx, task.Label, task, draft, rulesContext, task.Model)
}

// RunLabel validates the inputs and, when they pass, issues exactly one completion call.
func (a *Agent) RunLabel(ctx context.Context, label string, task TaskTemplate, draft, rulesContext string, model ModelVariant) (Result, error) {
	if err := requireInputs(draft, rulesContext); err != nil {
		return Result{}, err
	}
	if model == "" {
		model = ModelFast
	}

	req := Request{
		System:      SystemInstruction(label),
		User:        Render(task, draft, rulesContext),
		Model:       model,
		Temperature: Temperature,
	}

	start := time.Now()
	text, err := a.llm.Complete(ctx, req)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyResponse
	}
	if err != nil {
		err = asBackendError(err)
		a.logger.Warn().Err(err).Str("task", task.ID).Str("model", string(model)).Msg("task failed")
		return Result{}, err
	}
	a.logger.Info().
		Str("task", task.ID).
		Str("model", string(model)).
		Int("prompt_chars", len(req.User)).
		Int("result_chars", len(text)).
		Dur("elapsed", time.Since(start)).
		Msg("task completed")

	return Result{
		ID:        uuid.NewString(),
		TaskID:    task.ID,
		Title:     task.Title,
		Text:      text,
		CreatedAt: time.Now(),
	}, nil
}
