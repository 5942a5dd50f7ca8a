package markers

import (
	"regexp"
	"sort"
	"strings"

	"github.com/shirt-tracker/splitbuild/internal/variant"
)

var (
	commentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	classRe   = regexp.MustCompile(`\.(-?[_a-zA-Z][_a-zA-Z0-9-]*)`)
)

// split separates the shared stylesheet into the text outside any region and
// the text inside each platform's regions. Marker lines are dropped.
func split(shared string) (string, map[variant.Platform]string) {
	var common strings.Builder
	regions := map[variant.Platform]*strings.Builder{
		variant.Desktop: {},
		variant.Mobile:  {},
	}

	var open variant.Platform
	for _, line := range lines(shared) {
		k, tag := parseMarker(line)
		p := variant.Platform(tag)
		if _, known := regions[p]; k != kindNone && known {
			switch {
			case k == kindBegin && open == "":
				open = p
			case k == kindEnd && open == p:
				open = ""
			}
			continue
		}
		if open != "" {
			regions[open].WriteString(line)
		} else {
			common.WriteString(line)
		}
	}

	out := make(map[variant.Platform]string, len(regions))
	for p, b := range regions {
		out[p] = b.String()
	}
	return common.String(), out
}

// preludes returns the selector text in front of every "{" in css, skipping
// at-rule preludes such as @media queries.
func preludes(css string) []string {
	css = commentRe.ReplaceAllLiteralString(css, "")

	var out []string
	start := 0
	for i := 0; i < len(css); i++ {
		switch css[i] {
		case '{':
			if p := strings.TrimSpace(css[start:i]); p != "" && !strings.HasPrefix(p, "@") {
				out = append(out, p)
			}
			start = i + 1
		case '}', ';':
			start = i + 1
		}
	}
	return out
}

// classSelectors returns the set of class names used in selectors in css.
func classSelectors(css string) map[string]bool {
	set := make(map[string]bool)
	for _, p := range preludes(css) {
		for _, m := range classRe.FindAllStringSubmatch(p, -1) {
			set[m[1]] = true
		}
	}
	return set
}

// ExclusiveSelectors returns, sorted, the class selectors (with their leading
// dot) that appear only inside p's regions of the shared stylesheet: never in
// shared rules and never in the other platform's regions. Their presence in
// the other platform's output is proof of leakage.
func ExclusiveSelectors(shared string, p variant.Platform) []string {
	common, regions := split(shared)
	own := classSelectors(regions[p])
	other := classSelectors(regions[p.Opposite()])
	base := classSelectors(common)

	var out []string
	for name := range own {
		if base[name] || other[name] {
			continue
		}
		out = append(out, "."+name)
	}
	sort.Strings(out)
	return out
}

// ContainsSelector reports whether css uses the class selector sel (".name")
// as a whole token, so ".tab" does not match ".tab-btn".
func ContainsSelector(css, sel string) bool {
	for from := 0; ; {
		i := strings.Index(css[from:], sel)
		if i < 0 {
			return false
		}
		end := from + i + len(sel)
		if end == len(css) || !isNameChar(css[end]) {
			return true
		}
		from = from + i + 1
	}
}

func isNameChar(c byte) bool {
	return c == '-' || c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c >= 0x80
}
