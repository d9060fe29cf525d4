package generator

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrBackendCall        = errors.New("generation call failed")
	ErrEmptyResponse      = errors.New("model returned empty text")
	ErrSessionInit        = errors.New("chat session could not be started")
	ErrSessionInterrupted = errors.New("chat session was interrupted, please start a new session")
	ErrUnknownTask        = errors.New("unknown task")
	ErrMissingAPIKey      = errors.New("api key missing")
)

// ValidationError lists the inputs that were empty.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "please provide " + strings.Join(e.Missing, " and ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func requireInputs(draft, rulesContext string) error {
	var missing []string
	if strings.TrimSpace(draft) == "" {
		missing = append(missing, "the draft text")
	}
	if strings.TrimSpace(rulesContext) == "" {
		missing = append(missing, "the rules context")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// asBackendError makes sure a provider failure carries ErrBackendCall.
func asBackendError(err error) error {
	if err == nil || errors.Is(err, ErrBackendCall) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrBackendCall, err)
}
