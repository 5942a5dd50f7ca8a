package markers

import (
	"regexp"
	"strings"

	"github.com/shirt-tracker/splitbuild/internal/variant"
)

type kind int

const (
	kindNone kind = iota
	kindBegin
	kindEnd
)

var (
	markerLineRe  = regexp.MustCompile(`^[ \t]*/\* (/?)PLATFORM:([A-Za-z0-9_-]+) \*/[ \t]*$`)
	markerTokenRe = regexp.MustCompile(`/?PLATFORM:[A-Za-z0-9_-]+`)
)

// parseMarker classifies one line (with or without its line ending).
func parseMarker(line string) (kind, string) {
	line = strings.TrimRight(line, "\r\n")
	m := markerLineRe.FindStringSubmatch(line)
	if m == nil {
		return kindNone, ""
	}
	if m[1] == "/" {
		return kindEnd, m[2]
	}
	return kindBegin, m[2]
}

// Begin returns the opening marker line for p, without a line ending.
func Begin(p variant.Platform) string {
	return "/* PLATFORM:" + string(p) + " */"
}

// End returns the closing marker line for p, without a line ending.
func End(p variant.Platform) string {
	return "/* /PLATFORM:" + string(p) + " */"
}

// ContainsMarkerToken reports whether text still carries any marker token,
// whether or not it sits on a line of its own.
func ContainsMarkerToken(text string) bool {
	return markerTokenRe.MatchString(text)
}

// lines splits text after each newline so joining the parts reproduces text.
func lines(text string) []string {
	if text == "" {
		return nil
	}
	parts := strings.SplitAfter(text, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}
