package markers

import (
	"fmt"

	"github.com/shirt-tracker/splitbuild/internal/variant"
)

// Count holds the number of opening and closing markers seen for one platform.
type Count struct {
	Begin int
	End   int
}

// BalanceError describes the first malformed marker in a shared stylesheet.
type BalanceError struct {
	Line    int // 1-based
	Message string
}

func (e *BalanceError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Counts tallies opening and closing markers per platform tag. Tags other than
// the two known platforms are counted under their own name.
func Counts(shared string) map[variant.Platform]Count {
	counts := map[variant.Platform]Count{
		variant.Desktop: {},
		variant.Mobile:  {},
	}
	for _, line := range lines(shared) {
		k, tag := parseMarker(line)
		if k == kindNone {
			continue
		}
		c := counts[variant.Platform(tag)]
		if k == kindBegin {
			c.Begin++
		} else {
			c.End++
		}
		counts[variant.Platform(tag)] = c
	}
	return counts
}

// CheckBalance verifies that every opening marker is followed by exactly one
// closing marker of the same platform, with no nesting and no unknown tags.
func CheckBalance(shared string) error {
	var open variant.Platform
	openLine := 0

	for i, line := range lines(shared) {
		k, tag := parseMarker(line)
		if k == kindNone {
			continue
		}
		lineNo := i + 1

		p, err := variant.Parse(tag)
		if err != nil {
			return &BalanceError{Line: lineNo, Message: err.Error()}
		}

		switch k {
		case kindBegin:
			if open != "" {
				return &BalanceError{Line: lineNo, Message: fmt.Sprintf("%s region opened inside %s region started on line %d", p, open, openLine)}
			}
			open, openLine = p, lineNo
		case kindEnd:
			if open == "" {
				return &BalanceError{Line: lineNo, Message: fmt.Sprintf("closing %s marker without an opening marker", p)}
			}
			if open != p {
				return &BalanceError{Line: lineNo, Message: fmt.Sprintf("closing %s marker inside %s region started on line %d", p, open, openLine)}
			}
			open = ""
		}
	}

	if open != "" {
		return &BalanceError{Line: openLine, Message: fmt.Sprintf("%s region is never closed", open)}
	}
	return nil
}
