package assemble

import "fmt"

// MissingSourceError reports a required input file or directory that does
// not exist.
type MissingSourceError struct {
	Path string
	Err  error
}

func (e *MissingSourceError) Error() string {
	return fmt.Sprintf("required source %s is missing", e.Path)
}

func (e *MissingSourceError) Unwrap() error { return e.Err }
