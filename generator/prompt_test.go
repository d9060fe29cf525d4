package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_SubstitutesVerbatim(t *testing.T) {
	tmpl := TaskTemplate{Body: "A[{{draft_text}}]B[{{rules_context}}]C"}

	tests := []struct {
		name  string
		draft string
		rules string
		want  string
	}{
		{
			name:  "plain",
			draft: "draft",
			rules: "rules",
			want:  "A[draft]B[rules]C",
		},
		{
			name:  "format verbs and regexp tokens survive",
			draft: "100% of $1 {0} %s \\n",
			rules: "APA 7th; (a) & <b>",
			want:  "A[100% of $1 {0} %s \\n]B[APA 7th; (a) & <b>]C",
		},
		{
			name:  "slot syntax inside input is not re-expanded",
			draft: "see {{rules_context}}",
			rules: "R",
			want:  "A[see {{rules_context}}]B[R]C",
		},
		{
			name:  "multiline unicode",
			draft: "Línea 1\nLine 2 — 中文",
			rules: "• one\n• two",
			want:  "A[Línea 1\nLine 2 — 中文]B[• one\n• two]C",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tmpl, tt.draft, tt.rules))
		})
	}
}

func TestRender_CatalogTemplatesContainInputs(t *testing.T) {
	for _, task := range Catalog() {
		out := Render(task, "DRAFT-SENTINEL", "RULES-SENTINEL")
		assert.Contains(t, out, "DRAFT-SENTINEL", task.ID)
		assert.Contains(t, out, "RULES-SENTINEL", task.ID)
		assert.NotContains(t, out, SlotDraftText, task.ID)
		assert.NotContains(t, out, SlotRulesContext, task.ID)
	}
}

func TestSystemInstruction(t *testing.T) {
	assert.Equal(t,
		"You are a Proofreader at top-tier academic journal review level. Always follow the Rules Context.",
		SystemInstruction("Proofreader"))
}

func TestChatInstruction_EmbedsRules(t *testing.T) {
	rules := "Max 6000 words.\nHarvard referencing."
	out := ChatInstruction(rules)
	assert.Contains(t, out, rules)
	assert.Contains(t, out, "novelty")
	assert.Contains(t, out, "citation strategy")
}

func TestParseModelVariant(t *testing.T) {
	v, err := ParseModelVariant("pro")
	require.NoError(t, err)
	assert.Equal(t, ModelPro, v)

	_, err = ParseModelVariant("turbo")
	assert.Error(t, err)
}

func TestLLMSettings_ModelName(t *testing.T) {
	s := &LLMSettings{FastModel: "flash", ProModel: "pro-model"}
	assert.Equal(t, "flash", s.ModelName(ModelFast))
	assert.Equal(t, "pro-model", s.ModelName(ModelPro))
	assert.Equal(t, "flash", s.ModelName(""))
}
