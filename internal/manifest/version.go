package manifest

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

var strictVersionRe = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// MalformedVersionError reports a version string that is not strict X.Y.Z.
type MalformedVersionError struct {
	Source Source
	Value  string
	Err    error
}

func (e *MalformedVersionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: malformed version %q: %v", e.Source, e.Value, e.Err)
	}
	return fmt.Sprintf("%s: malformed version %q (want X.Y.Z)", e.Source, e.Value)
}

func (e *MalformedVersionError) Unwrap() error { return e.Err }

// ParseVersion parses a strict X.Y.Z version. A leading "v", pre-release or
// build metadata are all rejected.
func ParseVersion(src Source, value string) (*semver.Version, error) {
	if !strictVersionRe.MatchString(value) {
		return nil, &MalformedVersionError{Source: src, Value: value}
	}
	v, err := semver.StrictNewVersion(value)
	if err != nil {
		return nil, &MalformedVersionError{Source: src, Value: value, Err: err}
	}
	return v, nil
}

// Mismatch is one source whose version differs from the reference.
type Mismatch struct {
	Source Source
	Value  string
}

// Compare returns the sources in found whose version is not equal to the
// version of ref. Sources with an empty value are ignored.
func Compare(ref Source, found map[Source]string) ([]Mismatch, error) {
	want, err := ParseVersion(ref, found[ref])
	if err != nil {
		return nil, err
	}
	var out []Mismatch
	for _, src := range []Source{SourcePackage, SourceScript, SourceNative, SourceChangelog} {
		value, ok := found[src]
		if !ok || value == "" || src == ref {
			continue
		}
		got, err := ParseVersion(src, value)
		if err != nil || !got.Equal(want) {
			out = append(out, Mismatch{Source: src, Value: value})
		}
	}
	return out, nil
}
