package routing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shirt-tracker/splitbuild/internal/branding"
	"github.com/shirt-tracker/splitbuild/internal/variant"
)

// AuthRedirectPath is the site path of the redirect-resolving page.
const AuthRedirectPath = "/auth-redirect.html"

// AuthCallbackTypes are the values of the "type" query parameter the auth
// provider appends to its email links.
var AuthCallbackTypes = []string{"invite", "recovery", "email_change", "signup"}

// Rule is one line of a _redirects file:
//
//	from [query...] to status [condition...]
type Rule struct {
	From       string
	Query      []string
	To         string
	Status     int
	Force      bool
	Conditions []string
}

func (r Rule) String() string {
	parts := []string{r.From}
	parts = append(parts, r.Query...)
	parts = append(parts, r.To)
	status := strconv.Itoa(r.Status)
	if r.Force {
		status += "!"
	}
	parts = append(parts, status)
	parts = append(parts, r.Conditions...)
	return strings.Join(parts, " ")
}

// Condition returns the value of the named condition (e.g. "User-Agent"), if set.
func (r Rule) Condition(name string) (string, bool) {
	for _, c := range r.Conditions {
		k, v, ok := strings.Cut(c, "=")
		if ok && k == name {
			return v, true
		}
	}
	return "", false
}

// HasQuery reports whether the rule matches on the query parameter q
// ("key=value").
func (r Rule) HasQuery(q string) bool {
	for _, have := range r.Query {
		if have == q {
			return true
		}
	}
	return false
}

// Section is a commented group of rules. Order matters: the host applies the
// first matching rule.
type Section struct {
	Comment string
	Rules   []Rule
}

// Sections returns the routing rules for the two-variant site.
func Sections() []Section {
	d, m := variant.Desktop, variant.Mobile
	mobileUA := "User-Agent=" + branding.MobileUserAgent()
	desktopUA := "User-Agent=" + branding.DesktopUserAgent()

	var auth []Rule
	for _, typ := range AuthCallbackTypes {
		q := "type=" + typ
		auth = append(auth, Rule{From: "/", Query: []string{q}, To: AuthRedirectPath + "?" + q, Status: 200})
	}
	auth = append(auth, Rule{From: "/", Query: []string{"share=:share"}, To: AuthRedirectPath + "?share=:share", Status: 200})

	bare := func(p variant.Platform) string { return strings.TrimSuffix(p.URLPrefix(), "/") }

	return []Section{
		{Comment: "Auth callbacks and share links", Rules: auth},
		{Comment: "Device routing", Rules: []Rule{
			{From: "/", To: m.URLPrefix(), Status: 302, Conditions: []string{mobileUA}},
			{From: "/", To: d.URLPrefix(), Status: 302},
		}},
		{Comment: "Clean /m and /d paths", Rules: []Rule{
			{From: bare(m), To: m.URLPrefix(), Status: 301},
			{From: bare(d), To: d.URLPrefix(), Status: 301},
		}},
		{Comment: "Cross-platform redirects", Rules: []Rule{
			{From: d.URLPrefix() + "*", To: m.URLPrefix() + ":splat", Status: 302, Conditions: []string{mobileUA}},
			// A user agent matching both patterns stays on mobile.
			{From: m.URLPrefix() + "*", To: m.URLPrefix() + "index.html", Status: 200, Conditions: []string{mobileUA}},
			{From: m.URLPrefix() + "*", To: d.URLPrefix() + ":splat", Status: 302, Conditions: []string{desktopUA}},
		}},
		{Comment: "SPA fallbacks", Rules: []Rule{
			{From: m.URLPrefix() + "*", To: m.URLPrefix() + "index.html", Status: 200},
			{From: d.URLPrefix() + "*", To: d.URLPrefix() + "index.html", Status: 200},
		}},
	}
}

// Render formats sections as a _redirects file.
func Render(sections []Section) string {
	var b strings.Builder
	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		if s.Comment != "" {
			fmt.Fprintf(&b, "# %s\n", s.Comment)
		}
		for _, r := range s.Rules {
			b.WriteString(r.String())
			b.WriteString("\n")
		}
	}
	return b.String()
}

// ParseError reports a malformed _redirects line.
type ParseError struct {
	Line    int
	Text    string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d %q: %s", e.Line, e.Text, e.Message)
}

// Parse reads a _redirects file. Blank lines and # comments are skipped.
func Parse(text string) ([]Rule, error) {
	var rules []Rule
	for i, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		r, err := parseRule(trimmed)
		if err != nil {
			return nil, &ParseError{Line: i + 1, Text: trimmed, Message: err.Error()}
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func parseRule(line string) (Rule, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return Rule{}, fmt.Errorf("want at least from, to and status, got %d fields", len(fields))
	}

	r := Rule{From: fields[0]}
	if !strings.HasPrefix(r.From, "/") {
		return Rule{}, fmt.Errorf("source %q must start with /", r.From)
	}

	rest := fields[1:]
	for len(rest) > 0 && isQuery(rest[0]) {
		r.Query = append(r.Query, rest[0])
		rest = rest[1:]
	}
	if len(rest) < 2 {
		return Rule{}, fmt.Errorf("missing destination or status")
	}

	r.To = rest[0]
	if !strings.HasPrefix(r.To, "/") && !strings.Contains(r.To, "://") {
		return Rule{}, fmt.Errorf("destination %q must be a path or URL", r.To)
	}

	status := rest[1]
	if strings.HasSuffix(status, "!") {
		r.Force = true
		status = strings.TrimSuffix(status, "!")
	}
	code, err := strconv.Atoi(status)
	if err != nil || code < 200 || code > 599 {
		return Rule{}, fmt.Errorf("invalid status %q", rest[1])
	}
	r.Status = code

	for _, c := range rest[2:] {
		if !strings.Contains(c, "=") {
			return Rule{}, fmt.Errorf("condition %q is not key=value", c)
		}
		r.Conditions = append(r.Conditions, c)
	}
	return r, nil
}

// isQuery reports whether field is a query-parameter matcher rather than the
// destination.
func isQuery(field string) bool {
	return !strings.HasPrefix(field, "/") && !strings.Contains(field, "://") && strings.Contains(field, "=")
}
