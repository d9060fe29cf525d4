package generator

import (
	"context"
)

// fakeLLM records every call made to it.
type fakeLLM struct {
	reply       string
	err         error
	startErr    error
	sendErr     error
	completions []Request
	starts      []ChatConfig
	chats       []*fakeChat
}

func (f *fakeLLM) Complete(_ context.Context, req Request) (string, error) {
	f.completions = append(f.completions, req)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeLLM) StartChat(_ context.Context, cfg ChatConfig) (ChatHandle, error) {
	f.starts = append(f.starts, cfg)
	if f.startErr != nil {
		return nil, f.startErr
	}
	c := &fakeChat{parent: f}
	f.chats = append(f.chats, c)
	return c, nil
}

type fakeChat struct {
	parent *fakeLLM
	sent   []string
}

func (c *fakeChat) Send(_ context.Context, message string) (string, error) {
	c.sent = append(c.sent, message)
	if c.parent.sendErr != nil {
		return "", c.parent.sendErr
	}
	return "reply: " + message, nil
}
