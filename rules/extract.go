package rules

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"manuscript_editor/generator"
)

const extractInstruction = "Extract all formatting rules, citation style, and word-limit constraints visible in this image, as a clear list."

const extractSystem = "You read journal author guidelines and restate them as concise, numbered formatting rules."

// Extractor converts artifacts into rules context. Only images reach the model.
type Extractor struct {
	llm    generator.LLMClient
	logger zerolog.Logger
}

func NewExtractor(llm generator.LLMClient) (*Extractor, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	return &Extractor{llm: llm, logger: log.Logger}, nil
}

// WithLogger replaces the extractor's logger.
func (e *Extractor) WithLogger(l zerolog.Logger) *Extractor {
	e.logger = l
	return e
}

// Extract returns the rules contained in a.
func (e *Extractor) Extract(ctx context.Context, a Artifact) (string, error) {
	switch Classify(a.MIMEType) {
	case KindPlainText:
		return fromText(a.Data)
	case KindImage:
		return e.fromImage(ctx, a)
	default:
		mt := normalize(a.MIMEType)
		if mt == "" {
			mt = "unknown"
		}
		e.logger.Info().Str("mime", mt).Msg("rules file rejected")
		return "", &UnsupportedError{MIMEType: mt}
	}
}

func fromText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrInvalidText
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: the text file is empty", ErrNoRules)
	}
	return text, nil
}

func (e *Extractor) fromImage(ctx context.Context, a Artifact) (string, error) {
	text, err := e.llm.Complete(ctx, generator.Request{
		System: extractSystem,
		User:   extractInstruction,
		Model:  generator.ModelPro,
		Attachments: []generator.Attachment{
			{Data: a.Data, MIMEType: normalize(a.MIMEType)},
		},
		Temperature: generator.Temperature,
	})
	if errors.Is(err, generator.ErrEmptyResponse) || (err == nil && strings.TrimSpace(text) == "") {
		return "", fmt.Errorf("%w: the model found no rules in the image", ErrNoRules)
	}
	if err != nil {
		e.logger.Warn().Err(err).Msg("rules extraction failed")
		if !errors.Is(err, generator.ErrBackendCall) {
			err = fmt.Errorf("%w: %w", generator.ErrBackendCall, err)
		}
		return "", err
	}
	e.logger.Info().Int("bytes", len(a.Data)).Int("rules_chars", len(text)).Msg("rules extracted from image")
	return text, nil
}
