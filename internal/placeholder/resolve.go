package placeholder

import (
	"regexp"
	"strings"

	"github.com/shirt-tracker/splitbuild/internal/variant"
)

// Tokens recognized in the shared sources.
const (
	PlatformToken   = "__PLATFORM__"
	ChangelogMarker = "/* __CHANGELOG_INJECT__ */ []"
	VersionToken    = "__APP_VERSION__"
	SWVersionToken  = "__SW_VERSION__"
)

const platformAssignment = `const PLATFORM = "` + PlatformToken + `";`

var (
	lastChangeRe = regexp.MustCompile(`const LAST_COMMIT_DATE = "[^"\n]*";`)
	appVersionRe = regexp.MustCompile(`const APP_VERSION = "([^"\n]+)";`)
)

// Values carries the per-build payloads spliced into the shared script.
type Values struct {
	// Version replaces any __APP_VERSION__ token.
	Version string

	// Changelog is the validated changelog JSON that replaces the injection
	// marker. Empty leaves the marker alone.
	Changelog string

	// LastChange is the source-control change timestamp. Empty leaves the
	// LAST_COMMIT_DATE constant alone.
	LastChange string
}

// Result is the resolved script plus what was actually substituted.
type Result struct {
	Text              string
	PlatformResolved  bool
	ChangelogInjected bool
	LastChangeSet     bool
}

// PlatformAssignment returns the resolved form of the platform placeholder
// assignment for p, e.g. const PLATFORM = "mobile";.
func PlatformAssignment(p variant.Platform) string {
	return `const PLATFORM = "` + string(p) + `";`
}

// Resolve substitutes the placeholders of the shared script for platform p.
// The platform constant becomes a string literal so the minifier can fold
// comparisons against it and drop the other platform's branches.
func Resolve(script string, p variant.Platform, v Values) Result {
	res := Result{Text: script}

	if strings.Contains(res.Text, platformAssignment) {
		res.Text = strings.Replace(res.Text, platformAssignment, PlatformAssignment(p), 1)
		res.PlatformResolved = true
	}

	if v.Changelog != "" && strings.Contains(res.Text, ChangelogMarker) {
		res.Text = strings.Replace(res.Text, ChangelogMarker, strings.TrimSpace(v.Changelog), 1)
		res.ChangelogInjected = true
	}

	if v.LastChange != "" {
		stamp := `const LAST_COMMIT_DATE = "` + strings.ReplaceAll(v.LastChange, `"`, "") + `";`
		if text, ok := spliceFirst(res.Text, lastChangeRe, stamp); ok {
			res.Text = text
			res.LastChangeSet = true
		}
	}

	if v.Version != "" {
		res.Text = strings.ReplaceAll(res.Text, VersionToken, v.Version)
	}

	return res
}

// AppVersion extracts the APP_VERSION constant from the shared script.
func AppVersion(script string) (string, bool) {
	m := appVersionRe.FindStringSubmatch(script)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ServiceWorker substitutes every __SW_VERSION__ token with version.
func ServiceWorker(text, version string) string {
	return strings.ReplaceAll(text, SWVersionToken, version)
}

// spliceFirst replaces the first match of re in s with the literal repl.
func spliceFirst(s string, re *regexp.Regexp, repl string) (string, bool) {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s, false
	}
	return s[:loc[0]] + repl + s[loc[1]:], true
}
