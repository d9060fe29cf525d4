package rules

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupported = errors.New("unsupported rules file")
	ErrNoRules     = errors.New("no rules could be extracted")
	ErrInvalidText = errors.New("rules file is not valid UTF-8 text")
)

// UnsupportedError is returned for artifacts that are not processed, PDF included.
type UnsupportedError struct {
	MIMEType string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s files are not processed: copy the rules into the text field manually, or upload a JPEG/PNG screenshot of the guidelines instead", e.MIMEType)
}

func (e *UnsupportedError) Unwrap() error { return ErrUnsupported }
