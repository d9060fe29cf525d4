package generator

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Integrity(t *testing.T) {
	tasks := Catalog()
	require.Len(t, tasks, 7)

	seen := map[string]bool{}
	for _, task := range tasks {
		assert.False(t, seen[task.ID], "duplicate id %s", task.ID)
		seen[task.ID] = true

		assert.NotEmpty(t, task.Title, task.ID)
		assert.NotEmpty(t, task.Label, task.ID)
		assert.NotEmpty(t, task.DefaultRules, task.ID)
		assert.Equal(t, 1, strings.Count(task.Body, SlotDraftText), task.ID)
		assert.GreaterOrEqual(t, strings.Count(task.Body, SlotRulesContext), 1, task.ID)

		_, err := ParseModelVariant(string(task.Model))
		assert.NoError(t, err, task.ID)
	}
}

func TestCatalog_ReturnsCopy(t *testing.T) {
	tasks := Catalog()
	tasks[0].Body = "mutated"

	again, err := LookupTask(tasks[0].ID)
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", again.Body)
}

func TestLookupTask_Unknown(t *testing.T) {
	_, err := LookupTask("translate")
	assert.ErrorIs(t, err, ErrUnknownTask)
}

func TestNewLLM_Providers(t *testing.T) {
	ctx := context.Background()

	llm, err := NewLLM(ctx, &LLMSettings{Provider: "mock"})
	require.NoError(t, err)
	assert.IsType(t, MockLLM{}, llm)

	_, err = NewLLM(ctx, &LLMSettings{Provider: "gemini", FastModel: "a", ProModel: "b"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = NewLLM(ctx, &LLMSettings{Provider: "deepseek", APIKey: "k", FastModel: "a", ProModel: "b"})
	assert.Error(t, err)

	oa, err := NewLLM(ctx, &LLMSettings{Provider: "openai", APIKey: "k", FastModel: "a", ProModel: "b"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAILLM{}, oa)

	_, err = NewLLM(ctx, &LLMSettings{Provider: "llama"})
	assert.Error(t, err)
}

func TestDataURI(t *testing.T) {
	uri := dataURI(Attachment{Data: []byte("hi"), MIMEType: "image/png"})
	assert.Equal(t, "data:image/png;base64,aGk=", uri)
}
