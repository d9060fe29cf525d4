package generator

import "fmt"

const (
	copyEditRules  = "Use dense, formal language focused on the novelty of the research. Target a very specific readership."
	proofRules     = "Ensure formal English grammar throughout and avoid passive sentences. Check consistent use of italics."
	referenceRules = "Apply APA 7th ed. citation style strictly to the reference list. Pay attention to DOI/URL format and article title capitalization."
	templateRules  = "Output must respect the publisher's format limits. The abstract must be 250 words using: Background, Method, Result, Conclusion."
)

var catalog = []TaskTemplate{
	{
		ID:           "copyedit-title",
		Group:        "copy editing",
		Title:        "Copy Editing: Paper Title",
		Label:        "Copy Editor",
		Description:  "Sharpen the clarity, impact and relevance of the title.",
		DefaultRules: copyEditRules,
		Model:        ModelFast,
		Body: `Your task is to analyse and optimise the TITLE of this paper so it is more impactful, specific and fit for academic SEO.
Use the Rules Context ({{rules_context}}) as guidance.

### Draft Title:
{{draft_text}}

Present the result as 'Original Title' and 'Optimised Title (include the 3 best options)'.`,
	},
	{
		ID:           "copyedit-main-text",
		Group:        "copy editing",
		Title:        "Copy Editing: Main Text",
		Label:        "Copy Editor",
		Description:  "Make the argument flow and substance coherent across the paper.",
		DefaultRules: copyEditRules,
		Model:        ModelPro,
		Body: `Your task is to perform substantive copy editing on the main text (Introduction, Method, Results, Discussion, Conclusion). Focus on:
1. Logical coherence between paragraphs.
2. Consistency of argument and academic narrative flow.
3. Information density (conciseness).
Use the Rules Context ({{rules_context}}) as guidance.

### Draft Text:
{{draft_text}}

Present the result as 'Original Text' and 'Suggested Logical Revisions'.`,
	},
	{
		ID:           "proofread-grammar",
		Group:        "proofreading",
		Title:        "Proofreading: Grammar & Word Choice",
		Label:        "Proofreader",
		Description:  "Fix spelling and grammar and raise the formality of each sentence.",
		DefaultRules: proofRules,
		Model:        ModelFast,
		Body: `Your task is to proofread this text thoroughly. Focus on:
1. Formal English grammar and spelling.
2. Academic phrasing.
3. Consistent terminology.
Use the Rules Context ({{rules_context}}) as guidance.

### Draft Text:
{{draft_text}}

Present the result as 'Original Text' and 'Revised Text' (use Markdown bold to highlight the main changes).`,
	},
	{
		ID:           "proofread-references",
		Group:        "proofreading",
		Title:        "Proofreading: Reference List",
		Label:        "Format Editor",
		Description:  "Match the reference list exactly to the journal's citation style.",
		DefaultRules: referenceRules,
		Model:        ModelPro,
		Body: `Your task is to validate and format the reference list so it matches the Rules Context ({{rules_context}}) EXACTLY.
Focus on: consistent citation style (e.g. APA 7th, Vancouver), capitalization and date format.

### Draft Reference List:
{{draft_text}}

Present the result as 'Original List' and 'Corrected and Formatted List'.`,
	},
	{
		ID:           "proofread-acknowledgement",
		Group:        "proofreading",
		Title:        "Proofreading: Acknowledgement & Appendices",
		Label:        "Format Editor",
		Description:  "Bring the supporting sections into a formal format.",
		DefaultRules: proofRules,
		Model:        ModelFast,
		Body: `Your task is to check and format the Acknowledgement and Appendix sections. Focus on:
1. An appropriate formal and polite tone.
2. How institution and sponsor names are written.

Use the Rules Context ({{rules_context}}).

### Draft Text:
{{draft_text}}

Present 'Original' and 'Formatted Version'.`,
	},
	{
		ID:           "template-abstract",
		Group:        "templating",
		Title:        "Templating: Abstract",
		Label:        "Templating Specialist",
		Description:  "Restructure the abstract into a persuasive, structured form.",
		DefaultRules: templateRules,
		Model:        ModelFast,
		Body: `Your task is to rewrite this draft abstract into a highly PERSUASIVE and INFORMATIVE top-tier journal abstract.
Apply the standard abstract structure (Background, Method, Result, Conclusion) and follow the Rules Context ({{rules_context}}), especially word limits.

### Draft Abstract:
{{draft_text}}

Produce the output in this template:

**Optimised Abstract:**
**Keywords (3-5 relevant keywords):**`,
	},
	{
		ID:           "template-imrad",
		Group:        "templating",
		Title:        "Templating: Full Structure (IMRAD)",
		Label:        "Templating Specialist",
		Description:  "Reorganise the draft into an IMRAD framework.",
		DefaultRules: templateRules,
		Model:        ModelPro,
		Body: `Your task is to arrange this draft into the academic IMRAD framework (Introduction, Method, Result, Discussion) or to reorganise the given sub-sections.
Focus on smooth transitions between sections and compliance with the Rules Context ({{rules_context}}).

### Draft Text:
{{draft_text}}

Produce structured output with clear sub-section headings and a short note on why the structure was changed.`,
	},
}

// Catalog returns the editorial tasks in display order.
func Catalog() []TaskTemplate {
	out := make([]TaskTemplate, len(catalog))
	copy(out, catalog)
	return out
}

// LookupTask finds a task by id.
func LookupTask(id string) (TaskTemplate, error) {
	for _, t := range catalog {
		if t.ID == id {
			return t, nil
		}
	}
	return TaskTemplate{}, fmt.Errorf("%w: %q", ErrUnknownTask, id)
}
