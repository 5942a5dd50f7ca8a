package verify

import (
	"errors"
	"fmt"
	"strings"
)

// VerificationFailure is one check that did not pass.
type VerificationFailure struct {
	Group   string
	Check   string
	Message string
}

func (f VerificationFailure) Error() string {
	return fmt.Sprintf("%s: %s", f.Check, f.Message)
}

// FailedError is returned by Report.Err when at least one check failed.
type FailedError struct {
	Failed   int
	Failures []VerificationFailure
}

func (e *FailedError) Error() string {
	names := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		names[i] = f.Check
	}
	return fmt.Sprintf("%d verification check(s) failed: %s", e.Failed, strings.Join(names, ", "))
}

// skipError marks a check as not applicable to this project.
type skipError struct {
	reason string
}

func (e *skipError) Error() string { return e.reason }

func skip(format string, args ...any) error {
	return &skipError{reason: fmt.Sprintf(format, args...)}
}

func isSkip(err error) (string, bool) {
	var se *skipError
	if errors.As(err, &se) {
		return se.reason, true
	}
	return "", false
}
