package interpreter

import (
	"errors"
	"fmt"
)

// ErrEmptyDocument indicates no page ever produced a result.
var ErrEmptyDocument = errors.New("no valid questionnaire found in the document")

// RefusalError indicates the model declined to answer. Refusals are fatal and
// never retried, distinguishing "no answer" from "wrong-shaped answer".
type RefusalError struct {
	Provider string
	Message  string
}

func (e *RefusalError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("refusal from %s", e.Provider)
	}
	return fmt.Sprintf("refusal from %s: %s", e.Provider, e.Message)
}

// ExhaustedError indicates every attempt up to the retry limit produced
// output that failed to parse or validate. It carries the last raw response
// for diagnostics.
type ExhaustedError struct {
	Attempts    int
	LastErr     error
	RawResponse string
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("unable to validate response after %d attempts: %v", e.Attempts, e.LastErr)
}

func (e *ExhaustedError) Unwrap() error {
	return e.LastErr
}
