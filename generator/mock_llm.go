package generator

import (
	"context"
	"fmt"
	"strings"
)

// MockLLM is an offline client for local runs. It never calls an external model.
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, req Request) (string, error) {
	var sb strings.Builder
	sb.WriteString("## Original Text\n\n")
	sb.WriteString(req.User)
	sb.WriteString("\n\n## Revised Text\n\n")
	sb.WriteString(fmt.Sprintf("_mock %s model, %d attachment(s)_\n", req.Model, len(req.Attachments)))
	return sb.String(), nil
}

func (m MockLLM) StartChat(_ context.Context, _ ChatConfig) (ChatHandle, error) {
	return &mockChat{}, nil
}

type mockChat struct {
	turns int
}

func (c *mockChat) Send(_ context.Context, message string) (string, error) {
	c.turns++
	return fmt.Sprintf("(mock reply %d) You said: %s", c.turns, message), nil
}
