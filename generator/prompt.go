package generator

import (
	"fmt"
	"strings"
)

// Template slots.
const (
	SlotDraftText    = "{{draft_text}}"
	SlotRulesContext = "{{rules_context}}"
)

// TaskTemplate is an editorial task: a parameterized instruction plus the label used
// for the system role. Templates are defined at start-up and never mutated.
type TaskTemplate struct {
	ID           string       `json:"id"`
	Group        string       `json:"group"`
	Title        string       `json:"title"`
	Label        string       `json:"label"`
	Description  string       `json:"description"`
	DefaultRules string       `json:"default_rules"`
	Model        ModelVariant `json:"model"`
	Body         string       `json:"-"`
}

// Render substitutes draft and rules into the template slots in a single pass, so
// the substituted text is never scanned again.
func Render(t TaskTemplate, draft, rulesContext string) string {
	r := strings.NewReplacer(
		SlotDraftText, draft,
		SlotRulesContext, rulesContext,
	)
	return r.Replace(t.Body)
}

// SystemInstruction builds the system role for one-shot tasks.
func SystemInstruction(label string) string {
	return fmt.Sprintf("You are a %s at top-tier academic journal review level. Always follow the Rules Context.", label)
}

// ChatInstruction builds the system role of a chat session grounded on rulesContext.
// The rules are embedded verbatim.
func ChatInstruction(rulesContext string) string {
	var sb strings.Builder
	sb.WriteString("You are a senior academic editor and publication consultant for top-tier indexed journals.\n")
	sb.WriteString("Ground every answer in the following Rules Context:\n\n")
	sb.WriteString("--- RULES CONTEXT ---\n")
	sb.WriteString(rulesContext)
	sb.WriteString("\n--- END RULES CONTEXT ---\n\n")
	sb.WriteString("In this conversation:\n")
	sb.WriteString("- Discuss the substance, novelty and citation strategy of the author's work.\n")
	sb.WriteString("- When asked about journals or references, simulate an indexing check (e.g. Scopus/WoS tier) and state that it is a simulation.\n")
	sb.WriteString("- Give critical, formal feedback. Point out weaknesses before strengths.\n")
	sb.WriteString("- Always respect the Rules Context, including word limits and citation style.\n")
	return sb.String()
}

// WelcomeMessage is the synthetic first turn of every new chat session.
const WelcomeMessage = "Hello! I have read your journal rules. Ask me about the substance, novelty or citation strategy of your manuscript."
