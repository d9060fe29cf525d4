package generator

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newTestConversation(llm LLMClient) *Conversation {
	return NewConversation("test", llm).WithLogger(zerolog.Nop())
}

func TestGroundingChanged(t *testing.T) {
	tests := []struct {
		old, next string
		want      bool
	}{
		{"APA 7th", "APA 7th", false},
		{"", "APA 7th", true},
		{"APA 7th", "APA 7th ", true},
		{"APA 7th", "APA 7th...", true},
		{"APA 7th", "apa 7th", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GroundingChanged(tt.old, tt.next), "%q -> %q", tt.old, tt.next)
	}
}

func TestConversation_StartsUninitialized(t *testing.T) {
	conv := newTestConversation(&fakeLLM{})
	assert.Equal(t, StateUninitialized, conv.State())
	assert.Empty(t, conv.Transcript())
	assert.Empty(t, conv.Grounding())
}

func TestConversation_Sync_RequiresRules(t *testing.T) {
	llm := &fakeLLM{}
	conv := newTestConversation(llm)

	reset, err := conv.Sync(context.Background(), "  ")

	assert.ErrorIs(t, err, ErrValidation)
	assert.False(t, reset)
	assert.Empty(t, llm.starts, "no session started without rules")
	assert.Equal(t, StateUninitialized, conv.State())
}

func TestConversation_Sync_StartsWithWelcome(t *testing.T) {
	llm := &fakeLLM{}
	conv := newTestConversation(llm).WithModel(ModelFast)

	reset, err := conv.Sync(context.Background(), "R1: Harvard style")
	require.NoError(t, err)

	assert.True(t, reset)
	assert.Equal(t, StateActive, conv.State())
	assert.Equal(t, "R1: Harvard style", conv.Grounding())
	require.Len(t, llm.starts, 1)
	assert.Contains(t, llm.starts[0].System, "R1: Harvard style")
	assert.Equal(t, ModelFast, llm.starts[0].Model)
	assert.Equal(t, Temperature, llm.starts[0].Temperature)

	transcript := conv.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, RoleModel, transcript[0].Role)
	assert.Equal(t, WelcomeMessage, transcript[0].Content)
}

func TestConversation_SameRulesKeepsSession(t *testing.T) {
	llm := &fakeLLM{}
	conv := newTestConversation(llm)
	ctx := context.Background()

	_, err := conv.Sync(ctx, "R1")
	require.NoError(t, err)
	_, err = conv.Send(ctx, "R1", "Is my topic novel?")
	require.NoError(t, err)
	before := conv.Transcript()

	reset, err := conv.Sync(ctx, "R1")
	require.NoError(t, err)

	assert.False(t, reset)
	assert.Len(t, llm.starts, 1, "handle not recreated")
	assert.Equal(t, before, conv.Transcript())
}

func TestConversation_RulesChangeReinitializes(t *testing.T) {
	llm := &fakeLLM{}
	conv := newTestConversation(llm)
	ctx := context.Background()

	_, err := conv.Sync(ctx, "R1: APA")
	require.NoError(t, err)
	_, err = conv.Send(ctx, "R1: APA", "first question")
	require.NoError(t, err)
	require.Len(t, conv.Transcript(), 3)

	reset, err := conv.Sync(ctx, "R2: Vancouver")
	require.NoError(t, err)

	assert.True(t, reset)
	require.Len(t, llm.starts, 2)
	assert.Contains(t, llm.starts[1].System, "R2: Vancouver")
	assert.NotContains(t, llm.starts[1].System, "R1: APA")
	assert.Equal(t, "R2: Vancouver", conv.Grounding())

	transcript := conv.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, WelcomeMessage, transcript[0].Content)
}

func TestConversation_Send_AppendsTurns(t *testing.T) {
	llm := &fakeLLM{}
	conv := newTestConversation(llm)
	ctx := context.Background()

	turn, err := conv.Send(ctx, "R1", "Which journals fit?")
	require.NoError(t, err)

	assert.Equal(t, RoleModel, turn.Role)
	assert.Equal(t, "reply: Which journals fit?", turn.Content)

	transcript := conv.Transcript()
	require.Len(t, transcript, 3)
	assert.Equal(t, RoleModel, transcript[0].Role)
	assert.Equal(t, Message{Role: RoleUser, Content: "Which journals fit?"}, transcript[1].Message)
	assert.Equal(t, Message{Role: RoleModel, Content: "reply: Which journals fit?"}, transcript[2].Message)

	require.Len(t, llm.chats, 1)
	assert.Equal(t, []string{"Which journals fit?"}, llm.chats[0].sent, "only the new message is sent")
}

func TestConversation_Send_RulesEditResetsBeforeMessage(t *testing.T) {
	llm := &fakeLLM{}
	conv := newTestConversation(llm)
	ctx := context.Background()

	_, err := conv.Send(ctx, "R1", "one")
	require.NoError(t, err)
	_, err = conv.Send(ctx, "R2", "two")
	require.NoError(t, err)

	require.Len(t, llm.chats, 2)
	assert.Equal(t, []string{"two"}, llm.chats[1].sent)
	transcript := conv.Transcript()
	require.Len(t, transcript, 3)
	assert.Equal(t, WelcomeMessage, transcript[0].Content)
	assert.Equal(t, "two", transcript[1].Content)
}

func TestConversation_Send_EmptyMessage(t *testing.T) {
	llm := &fakeLLM{}
	conv := newTestConversation(llm)

	_, err := conv.Send(context.Background(), "R1", " ")

	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, llm.starts)
}

func TestConversation_Send_FailureTerminates(t *testing.T) {
	cause := errors.New("connection reset")
	llm := &fakeLLM{}
	conv := newTestConversation(llm)
	ctx := context.Background()

	_, err := conv.Send(ctx, "R1", "hello")
	require.NoError(t, err)

	llm.sendErr = cause
	_, err = conv.Send(ctx, "R1", "again")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionInterrupted)
	assert.ErrorIs(t, err, ErrBackendCall)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "interrupted")
	assert.Equal(t, StateUninitialized, conv.State())
	assert.Empty(t, conv.Transcript())
	assert.Empty(t, conv.Grounding())

	// The next use starts over with the same rules.
	llm.sendErr = nil
	reset, err := conv.Sync(ctx, "R1")
	require.NoError(t, err)
	assert.True(t, reset)
	assert.Len(t, llm.starts, 2)
}

func TestConversation_StartFailure(t *testing.T) {
	llm := &fakeLLM{startErr: errors.New("permission denied")}
	conv := newTestConversation(llm)

	reset, err := conv.Sync(context.Background(), "R1")

	assert.False(t, reset)
	assert.ErrorIs(t, err, ErrSessionInit)
	assert.Equal(t, StateUninitialized, conv.State())
	assert.Empty(t, conv.Transcript())
}

func TestConversation_Reset(t *testing.T) {
	conv := newTestConversation(&fakeLLM{})
	_, err := conv.Sync(context.Background(), "R1")
	require.NoError(t, err)

	conv.Reset()

	assert.Equal(t, StateUninitialized, conv.State())
	assert.Empty(t, conv.Transcript())
}

func TestConversation_TranscriptIsCopy(t *testing.T) {
	conv := newTestConversation(&fakeLLM{})
	_, err := conv.Sync(context.Background(), "R1")
	require.NoError(t, err)

	tr := conv.Transcript()
	tr[0].Content = "edited"

	assert.Equal(t, WelcomeMessage, conv.Transcript()[0].Content)
}

func TestConversation_ConcurrentSendsAreSerialised(t *testing.T) {
	llm := &fakeLLM{}
	conv := newTestConversation(llm)
	ctx := context.Background()

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := conv.Send(ctx, "R1", fmt.Sprintf("question %d", i))
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.Len(t, llm.starts, 1)
	transcript := conv.Transcript()
	require.Len(t, transcript, 1+2*8)
	for i := 1; i < len(transcript); i += 2 {
		assert.Equal(t, RoleUser, transcript[i].Role)
		assert.Equal(t, "reply: "+transcript[i].Content, transcript[i+1].Content)
	}
}

func TestConversation_StartFailureFromActive(t *testing.T) {
	llm := &fakeLLM{}
	conv := newTestConversation(llm)
	ctx := context.Background()
	_, err := conv.Send(ctx, "R1", "hello")
	require.NoError(t, err)
	require.Len(t, conv.Transcript(), 3)

	llm.startErr = errors.New("quota exceeded")
	reset, err := conv.Sync(ctx, "R2")

	assert.False(t, reset)
	assert.ErrorIs(t, err, ErrSessionInit)
	snap := conv.Snapshot()
	assert.Equal(t, StateUninitialized, snap.State)
	assert.Empty(t, snap.Transcript, "turns grounded on R1 are not kept")
	assert.Empty(t, snap.Grounding)
	assert.Len(t, llm.starts, 2)

	llm.startErr = nil
	reset, err = conv.Sync(ctx, "R1")
	require.NoError(t, err)
	assert.True(t, reset, "the old session is not revived")
	assert.Len(t, conv.Transcript(), 1)
}

func TestConversation_Snapshot(t *testing.T) {
	conv := newTestConversation(&fakeLLM{})
	assert.Equal(t, Snapshot{State: StateUninitialized, Transcript: []Turn{}}, conv.Snapshot())

	_, err := conv.Send(context.Background(), "R1", "hello")
	require.NoError(t, err)

	snap := conv.Snapshot()
	assert.Equal(t, StateActive, snap.State)
	assert.Equal(t, "R1", snap.Grounding)
	assert.Equal(t, conv.Transcript(), snap.Transcript)

	snap.Transcript[0].Content = "edited"
	assert.Equal(t, WelcomeMessage, conv.Transcript()[0].Content)
}

func TestConversation_SnapshotConsistentUnderFailures(t *testing.T) {
	llm := &flakySendLLM{}
	conv := newTestConversation(llm)
	ctx := context.Background()

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			_, _ = conv.Send(ctx, "R1", fmt.Sprintf("question %d", i))
			return nil
		})
		g.Go(func() error {
			snap := conv.Snapshot()
			active := snap.State == StateActive
			if active != (len(snap.Transcript) > 0) || active != (snap.Grounding != "") {
				return fmt.Errorf("torn snapshot: %s with %d turns, grounding %q", snap.State, len(snap.Transcript), snap.Grounding)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

// flakySendLLM fails every other chat turn. Calls are serialised by the Conversation.
type flakySendLLM struct {
	sends int
}

func (f *flakySendLLM) Complete(context.Context, Request) (string, error) {
	return "", errors.New("not used")
}

func (f *flakySendLLM) StartChat(context.Context, ChatConfig) (ChatHandle, error) {
	return f, nil
}

func (f *flakySendLLM) Send(_ context.Context, message string) (string, error) {
	f.sends++
	if f.sends%2 == 0 {
		return "", errors.New("stream reset")
	}
	return "reply: " + message, nil
}
