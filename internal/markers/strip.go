package markers

import (
	"strings"

	"github.com/shirt-tracker/splitbuild/internal/variant"
)

type state int

const (
	emitting state = iota
	skipping
)

// Strip returns the shared stylesheet as seen by keep: every region of the
// opposite platform is removed together with its marker lines, and the marker
// lines of keep's own regions are removed while their content stays.
//
// Strip assumes balanced input (see CheckBalance). On unbalanced input the
// output is unspecified but Strip never fails: a region left open at the end
// of the file swallows the rest of it, and a stray closing marker is dropped.
func Strip(shared string, keep variant.Platform) string {
	drop := keep.Opposite()

	var b strings.Builder
	b.Grow(len(shared))

	st := emitting
	for _, line := range lines(shared) {
		k, tag := parseMarker(line)
		p := variant.Platform(tag)

		switch {
		case st == skipping:
			if k == kindEnd && p == drop {
				st = emitting
			}
		case k == kindBegin && p == drop:
			st = skipping
		case k != kindNone && (p == keep || p == drop):
			// Marker line only; the region's content is on the lines between.
		default:
			b.WriteString(line)
		}
	}
	return b.String()
}
