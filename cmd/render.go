package cmd

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"
)

// markdownRenderer returns a function that formats model output for the terminal.
// Without pretty, or when no renderer can be built, text passes through unchanged.
func markdownRenderer(pretty bool) func(string) string {
	plain := func(s string) string { return s }
	if !pretty {
		return plain
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		log.Debug().Err(err).Msg("markdown renderer unavailable, printing plain text")
		return plain
	}
	return func(s string) string {
		out, err := renderer.Render(s)
		if err != nil {
			return s
		}
		return strings.TrimRight(out, "\n")
	}
}
