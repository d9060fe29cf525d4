package generator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// State of a Conversation.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateActive        State = "active"
)

// GroundingChanged reports whether a session grounded on old must be rebuilt for next.
// Comparison is exact: any difference, including whitespace, counts.
func GroundingChanged(old, next string) bool {
	return old != next
}

// Conversation owns one multi-turn chat session. The backing handle is replaced, never
// patched, whenever the grounding rules change or a turn fails.
type Conversation struct {
	ID string

	mu         sync.Mutex
	llm        LLMClient
	model      ModelVariant
	logger     zerolog.Logger
	handle     ChatHandle
	transcript []Turn
	grounding  string
}

// NewConversation creates an uninitialized conversation. Nothing is sent until Sync or Send.
func NewConversation(id string, llm LLMClient) *Conversation {
	return &Conversation{
		ID:     id,
		llm:    llm,
		model:  ModelPro,
		logger: log.Logger,
	}
}

// WithModel sets the variant used for new backing sessions.
func (c *Conversation) WithModel(m ModelVariant) *Conversation {
	c.model = m
	return c
}

// WithLogger replaces the conversation's logger.
func (c *Conversation) WithLogger(l zerolog.Logger) *Conversation {
	c.logger = l
	return c
}

// State returns StateActive while a backing handle exists.
func (c *Conversation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle == nil {
		return StateUninitialized
	}
	return StateActive
}

// Grounding returns the rules context the current handle was built with.
func (c *Conversation) Grounding() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.grounding
}

// Transcript returns a copy of the accepted turns.
func (c *Conversation) Transcript() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Turn, len(c.transcript))
	copy(out, c.transcript)
	return out
}

// Snapshot is a consistent view of a Conversation taken under one lock.
type Snapshot struct {
	State      State
	Grounding  string
	Transcript []Turn
}

// Snapshot returns state, grounding and a transcript copy that all describe the same moment.
func (c *Conversation) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		State:      StateUninitialized,
		Grounding:  c.grounding,
		Transcript: make([]Turn, len(c.transcript)),
	}
	if c.handle != nil {
		s.State = StateActive
	}
	copy(s.Transcript, c.transcript)
	return s
}

// Sync makes sure the session is grounded on rulesContext. It starts a new backing
// session when none exists or the rules changed, and reports whether it did.
func (c *Conversation) Sync(ctx context.Context, rulesContext string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sync(ctx, rulesContext)
}

// Send runs one turn. The session is re-grounded first if rulesContext differs from the
// last one. A failed turn terminates the session: handle and transcript are dropped.
func (c *Conversation) Send(ctx context.Context, rulesContext, message string) (Turn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if strings.TrimSpace(message) == "" {
		return Turn{}, &ValidationError{Missing: []string{"a message"}}
	}
	if _, err := c.sync(ctx, rulesContext); err != nil {
		return Turn{}, err
	}

	c.appendTurn(RoleUser, message)
	reply, err := c.handle.Send(ctx, message)
	if err == nil && strings.TrimSpace(reply) == "" {
		err = ErrEmptyResponse
	}
	if err != nil {
		c.discard()
		c.logger.Warn().Err(err).Str("session", c.ID).Msg("chat turn failed, session terminated")
		return Turn{}, fmt.Errorf("%w: %w", ErrSessionInterrupted, asBackendError(err))
	}

	c.logger.Debug().Str("session", c.ID).Int("turns", len(c.transcript)+1).Msg("chat turn completed")
	return c.appendTurn(RoleModel, reply), nil
}

// Reset drops the backing session and transcript.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.discard()
}

func (c *Conversation) sync(ctx context.Context, rulesContext string) (bool, error) {
	if strings.TrimSpace(rulesContext) == "" {
		return false, &ValidationError{Missing: []string{"the rules context"}}
	}
	if c.handle != nil && !GroundingChanged(c.grounding, rulesContext) {
		return false, nil
	}

	reinit := c.handle != nil
	c.discard()

	handle, err := c.llm.StartChat(ctx, ChatConfig{
		System:      ChatInstruction(rulesContext),
		Model:       c.model,
		Temperature: Temperature,
	})
	if err == nil && handle == nil {
		err = fmt.Errorf("provider returned no chat handle")
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("session", c.ID).Msg("chat session start failed")
		return false, fmt.Errorf("%w: %w", ErrSessionInit, err)
	}

	c.handle = handle
	c.grounding = rulesContext
	c.appendTurn(RoleModel, WelcomeMessage)
	c.logger.Info().
		Str("session", c.ID).
		Str("model", string(c.model)).
		Bool("reinitialized", reinit).
		Int("rules_chars", len(rulesContext)).
		Msg("chat session started")
	return true, nil
}

func (c *Conversation) discard() {
	c.handle = nil
	c.transcript = nil
	c.grounding = ""
}

func (c *Conversation) appendTurn(role Role, content string) Turn {
	t := Turn{
		Message:   Message{Role: role, Content: content},
		CreatedAt: time.Now(),
	}
	c.transcript = append(c.transcript, t)
	return t
}
