package verify

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/shirt-tracker/splitbuild/internal/assemble"
	"github.com/shirt-tracker/splitbuild/internal/branding"
	"github.com/shirt-tracker/splitbuild/internal/layout"
	"github.com/shirt-tracker/splitbuild/internal/manifest"
	"github.com/shirt-tracker/splitbuild/internal/markers"
	"github.com/shirt-tracker/splitbuild/internal/placeholder"
	"github.com/shirt-tracker/splitbuild/internal/routing"
	"github.com/shirt-tracker/splitbuild/internal/variant"
)

// Check groups, in report order.
const (
	GroupExistence    = "Existence"
	GroupInlining     = "Inlining"
	GroupCleanup      = "Cleanup"
	GroupLeakage      = "Leakage"
	GroupPlaceholders = "Placeholders"
	GroupIntegrity    = "Integrity"
	GroupVersions     = "Versions"
	GroupRouting      = "Routing"
)

var (
	// corruptionRe matches the residue of a pattern-expanding replacement
	// that spliced "$&" into code.
	corruptionRe   = regexp.MustCompile(`(?m);\$&|^\$&`)
	builtVersionRe = regexp.MustCompile(`\bAPP_VERSION\s*=\s*"([^"]*)"`)
)

// DefaultChecks returns the full battery in report order.
func DefaultChecks() []Check {
	var checks []Check
	add := func(group, name string, run func(*Env) error) {
		checks = append(checks, Check{Group: group, Name: name, Run: run})
	}
	platforms := variant.All()

	for _, p := range platforms {
		add(GroupExistence, p.String()+" document exists", fileExists(func(l layout.Layout) string {
			return l.VariantFile(p, layout.ShellFile)
		}))
	}
	for _, p := range platforms {
		add(GroupExistence, p.String()+" service worker exists", serviceWorkerExists(p))
	}
	add(GroupExistence, layout.RedirectsFile+" exists", fileExists(layout.Layout.Redirects))
	add(GroupExistence, layout.AuthRedirect+" exists", fileExists(layout.Layout.AuthRedirect))
	add(GroupExistence, "native shell document exists", nativeShell(fileExists(nativeDocPath)))

	for _, p := range platforms {
		add(GroupInlining, p.String()+" style embedded", styleEmbedded(variantDoc(p)))
		add(GroupInlining, p.String()+" script embedded", scriptEmbedded(variantDoc(p)))
	}
	add(GroupInlining, "native shell style embedded", nativeShell(styleEmbedded(nativeDocPath)))
	add(GroupInlining, "native shell script embedded", nativeShell(scriptEmbedded(nativeDocPath)))

	for _, p := range platforms {
		add(GroupCleanup, p.String()+" standalone files removed", standaloneRemoved(p))
	}

	add(GroupLeakage, "shared stylesheet markers balanced", markersBalanced)
	for _, p := range platforms {
		add(GroupLeakage, p.String()+" has no marker comments", noMarkers(p))
		add(GroupLeakage, p.String()+" has no "+p.Opposite().String()+" selectors", noOppositeSelectors(p))
	}

	for _, p := range platforms {
		add(GroupPlaceholders, p.String()+" platform resolved", platformResolved(p))
		add(GroupPlaceholders, p.String()+" changelog injected", changelogInjected(p))
		add(GroupPlaceholders, p.String()+" deploy date stamped", noToken(p, assemble.DeployDateToken))
		add(GroupPlaceholders, p.String()+" service worker versioned", serviceWorkerVersioned(p))
	}

	for _, p := range platforms {
		add(GroupIntegrity, p.String()+" has no replacement corruption", noCorruption(variantDoc(p)))
	}
	add(GroupIntegrity, "native shell has no replacement corruption", nativeShell(noCorruption(nativeDocPath)))

	add(GroupVersions, "changelog latest entry complete", changelogComplete)
	add(GroupVersions, "shared script version matches package.json", sharedScriptVersion)
	for _, p := range platforms {
		add(GroupVersions, p.String()+" script version matches package.json", scriptVersion(p))
	}
	add(GroupVersions, "native config version matches package.json", nativeVersion)
	add(GroupVersions, "changelog version matches package.json", changelogVersion)
	for _, p := range platforms {
		add(GroupVersions, p.String()+" about dialog shows version", aboutDialog(p))
	}

	add(GroupRouting, "mobile user agents routed to "+variant.Mobile.URLPrefix(), mobileRootRule)
	add(GroupRouting, "other requests routed to "+variant.Desktop.URLPrefix(), desktopRootRule)
	add(GroupRouting, "SPA fallbacks present", spaFallbacks)
	add(GroupRouting, "auth callbacks routed", authCallbacks)
	add(GroupRouting, "auth redirect page preserves query and hash", authPage)

	return checks
}

type pathFunc func(layout.Layout) string

func variantDoc(p variant.Platform) pathFunc {
	return func(l layout.Layout) string { return l.VariantFile(p, layout.ShellFile) }
}

func nativeDocPath(l layout.Layout) string {
	return filepath.Join(l.NativeShellSrc(), layout.ShellFile)
}

func fileExists(path pathFunc) func(*Env) error {
	return func(e *Env) error {
		if !e.Exists(path(e.Layout)) {
			return fmt.Errorf("%s not found", e.Layout.Rel(path(e.Layout)))
		}
		return nil
	}
}

// nativeShell skips run when the project has no native desktop shell.
func nativeShell(run func(*Env) error) func(*Env) error {
	return func(e *Env) error {
		if !e.Layout.HasNativeShell() {
			return skip("no native shell")
		}
		return run(e)
	}
}

// expectsServiceWorker reports whether the sources provide a service worker
// for p.
func expectsServiceWorker(e *Env, p variant.Platform) bool {
	l := e.Layout
	return e.Exists(l.SharedServiceWorker()) || e.Exists(filepath.Join(l.ShellDir(p), layout.ServiceWorker))
}

func serviceWorkerExists(p variant.Platform) func(*Env) error {
	return func(e *Env) error {
		if !expectsServiceWorker(e, p) {
			return skip("no service worker source")
		}
		return fileExists(func(l layout.Layout) string { return l.VariantFile(p, layout.ServiceWorker) })(e)
	}
}

func styleEmbedded(path pathFunc) func(*Env) error {
	return func(e *Env) error {
		doc, err := e.Document(path(e.Layout))
		if err != nil {
			return err
		}
		if doc.References(layout.StyleFile) {
			return fmt.Errorf("%s still linked as an external stylesheet", layout.StyleFile)
		}
		if strings.TrimSpace(doc.Style()) == "" {
			return errors.New("no embedded <style> content")
		}
		return nil
	}
}

func scriptEmbedded(path pathFunc) func(*Env) error {
	return func(e *Env) error {
		doc, err := e.Document(path(e.Layout))
		if err != nil {
			return err
		}
		if doc.References(layout.ScriptFile) {
			return fmt.Errorf("%s still loaded as an external script", layout.ScriptFile)
		}
		if strings.TrimSpace(doc.Script()) == "" {
			return errors.New("no embedded <script> content")
		}
		return nil
	}
}

func standaloneRemoved(p variant.Platform) func(*Env) error {
	return func(e *Env) error {
		var left []string
		for _, name := range []string{layout.StyleFile, layout.ScriptFile} {
			path := e.Layout.VariantFile(p, name)
			if e.Exists(path) {
				left = append(left, e.Layout.Rel(path))
			}
		}
		if len(left) > 0 {
			return fmt.Errorf("left behind: %s", strings.Join(left, ", "))
		}
		return nil
	}
}

func markersBalanced(e *Env) error {
	shared, err := e.Read(e.Layout.SharedStyle())
	if err != nil {
		return err
	}
	return markers.CheckBalance(shared)
}

func noMarkers(p variant.Platform) func(*Env) error {
	return func(e *Env) error {
		doc, err := e.Document(e.Layout.VariantFile(p, layout.ShellFile))
		if err != nil {
			return err
		}
		if markers.ContainsMarkerToken(doc.Style()) {
			return errors.New("embedded style contains a PLATFORM marker")
		}
		return nil
	}
}

func noOppositeSelectors(p variant.Platform) func(*Env) error {
	return func(e *Env) error {
		shared, err := e.Read(e.Layout.SharedStyle())
		if err != nil {
			return err
		}
		doc, err := e.Document(e.Layout.VariantFile(p, layout.ShellFile))
		if err != nil {
			return err
		}
		exclusive := markers.ExclusiveSelectors(shared, p.Opposite())
		if len(exclusive) == 0 {
			return skip("no %s-only selectors in the shared stylesheet", p.Opposite())
		}
		style := doc.Style()
		var leaked []string
		for _, sel := range exclusive {
			if markers.ContainsSelector(style, sel) {
				leaked = append(leaked, sel)
			}
		}
		if len(leaked) > 0 {
			return fmt.Errorf("leaked %s selectors: %s", p.Opposite(), strings.Join(leaked, " "))
		}
		return nil
	}
}

func platformResolved(p variant.Platform) func(*Env) error {
	want := regexp.MustCompile(`\bPLATFORM\s*=\s*"` + regexp.QuoteMeta(p.String()) + `"`)
	return func(e *Env) error {
		doc, err := e.Document(e.Layout.VariantFile(p, layout.ShellFile))
		if err != nil {
			return err
		}
		script := doc.Script()
		if strings.Contains(script, placeholder.PlatformToken) {
			return fmt.Errorf("script still contains %s", placeholder.PlatformToken)
		}
		if !want.MatchString(script) {
			return fmt.Errorf("script does not assign PLATFORM = %q", p.String())
		}
		return nil
	}
}

func noToken(p variant.Platform, token string) func(*Env) error {
	return func(e *Env) error {
		doc, err := e.Document(e.Layout.VariantFile(p, layout.ShellFile))
		if err != nil {
			return err
		}
		if strings.Contains(doc.Raw, token) {
			return fmt.Errorf("document still contains %s", token)
		}
		return nil
	}
}

func changelogInjected(p variant.Platform) func(*Env) error {
	return func(e *Env) error {
		cl, err := changelog(e)
		if err != nil {
			return err
		}
		shared, err := e.Read(e.Layout.SharedScript())
		if err != nil {
			return err
		}
		if !strings.Contains(shared, placeholder.ChangelogMarker) {
			return skip("no changelog marker in %s", layout.SharedScriptFile)
		}
		doc, err := e.Document(e.Layout.VariantFile(p, layout.ShellFile))
		if err != nil {
			return err
		}
		script := doc.Script()
		if strings.Contains(script, "__CHANGELOG_INJECT__") {
			return errors.New("script still contains the changelog marker")
		}
		if latest := cl.Latest(); !strings.Contains(script, latest.Date) {
			return fmt.Errorf("script does not contain the %s release", latest.Version)
		}
		return nil
	}
}

func serviceWorkerVersioned(p variant.Platform) func(*Env) error {
	return func(e *Env) error {
		if !expectsServiceWorker(e, p) {
			return skip("no service worker source")
		}
		sw, err := e.Read(e.Layout.VariantFile(p, layout.ServiceWorker))
		if err != nil {
			return err
		}
		if strings.Contains(sw, placeholder.SWVersionToken) {
			return fmt.Errorf("sw.js still contains %s", placeholder.SWVersionToken)
		}
		version, err := packageVersion(e)
		if err != nil {
			return err
		}
		if !strings.Contains(sw, version) {
			return fmt.Errorf("sw.js does not mention version %s", version)
		}
		return nil
	}
}

func noCorruption(path pathFunc) func(*Env) error {
	return func(e *Env) error {
		doc, err := e.Document(path(e.Layout))
		if err != nil {
			return err
		}
		if loc := corruptionRe.FindStringIndex(doc.Raw); loc != nil {
			line := strings.Count(doc.Raw[:loc[0]], "\n") + 1
			return fmt.Errorf("replacement corruption %q at line %d", doc.Raw[loc[0]:loc[1]], line)
		}
		return nil
	}
}

func packageVersion(e *Env) (string, error) {
	path := e.Layout.PackageManifest()
	if !e.Exists(path) {
		return "", fmt.Errorf("%s not found", layout.PackageFile)
	}
	pkg, err := manifest.ParsePackage(path)
	if err != nil {
		return "", err
	}
	if _, err := manifest.ParseVersion(manifest.SourcePackage, pkg.Version); err != nil {
		return "", err
	}
	return pkg.Version, nil
}

func changelog(e *Env) (*manifest.Changelog, error) {
	path := e.Layout.Changelog()
	if !e.Exists(path) {
		return nil, skip("no %s", layout.ChangelogFile)
	}
	return manifest.ParseChangelog(path)
}

func changelogComplete(e *Env) error {
	cl, err := changelog(e)
	if err != nil {
		return err
	}
	latest := cl.Latest()
	switch {
	case latest.Version == "":
		return errors.New("latest entry has no version")
	case latest.Date == "":
		return errors.New("latest entry has no date")
	case len(latest.Changes) == 0:
		return errors.New("latest entry has no changes")
	}
	return nil
}

// versionMatches compares a version from src with package.json.
func versionMatches(e *Env, src manifest.Source, value string) error {
	want, err := packageVersion(e)
	if err != nil {
		return err
	}
	mismatches, err := manifest.Compare(manifest.SourcePackage, map[manifest.Source]string{
		manifest.SourcePackage: want,
		src:                    value,
	})
	if err != nil {
		return err
	}
	if value == "" || len(mismatches) > 0 {
		return fmt.Errorf("%s has %q, package.json has %q", src, value, want)
	}
	return nil
}

func scriptVersion(p variant.Platform) func(*Env) error {
	return func(e *Env) error {
		doc, err := e.Document(e.Layout.VariantFile(p, layout.ShellFile))
		if err != nil {
			return err
		}
		m := builtVersionRe.FindStringSubmatch(doc.Script())
		if m == nil {
			return errors.New("script has no APP_VERSION constant")
		}
		return versionMatches(e, manifest.SourceScript, m[1])
	}
}

// sharedScriptVersion compares APP_VERSION in the shared script source with
// package.json.
func sharedScriptVersion(e *Env) error {
	script, err := e.Read(e.Layout.SharedScript())
	if err != nil {
		return err
	}
	version, ok := placeholder.AppVersion(script)
	if !ok {
		return fmt.Errorf("%s has no APP_VERSION constant", layout.SharedScriptFile)
	}
	if version == placeholder.VersionToken {
		return skip("version derived from %s", layout.PackageFile)
	}
	return versionMatches(e, manifest.SourceScript, version)
}

func nativeVersion(e *Env) error {
	path := e.Layout.NativeConfigPath()
	if !e.Exists(path) {
		return skip("no %s", layout.NativeConfig)
	}
	cfg, err := manifest.ParseNativeConfig(path)
	if err != nil {
		return err
	}
	return versionMatches(e, manifest.SourceNative, cfg.Version)
}

func changelogVersion(e *Env) error {
	cl, err := changelog(e)
	if err != nil {
		return err
	}
	return versionMatches(e, manifest.SourceChangelog, cl.Latest().Version)
}

func aboutDialog(p variant.Platform) func(*Env) error {
	return func(e *Env) error {
		version, err := packageVersion(e)
		if err != nil {
			return err
		}
		html, err := e.Read(e.Layout.VariantFile(p, layout.ShellFile))
		if err != nil {
			return err
		}
		want := branding.DisplayName() + " v" + version
		if !strings.Contains(html, want) {
			return fmt.Errorf("document does not contain %q", want)
		}
		return nil
	}
}

func redirectRules(e *Env) ([]routing.Rule, error) {
	text, err := e.Read(e.Layout.Redirects())
	if err != nil {
		return nil, err
	}
	return routing.Parse(text)
}

// findRule returns the index of the first rule matching pred, or -1.
func findRule(rules []routing.Rule, pred func(routing.Rule) bool) int {
	for i, r := range rules {
		if pred(r) {
			return i
		}
	}
	return -1
}

func isMobileRoot(r routing.Rule) bool {
	ua, ok := r.Condition("User-Agent")
	return r.From == "/" && len(r.Query) == 0 && r.To == variant.Mobile.URLPrefix() &&
		r.Status == 302 && ok && ua != ""
}

func isDesktopRoot(r routing.Rule) bool {
	return r.From == "/" && len(r.Query) == 0 && r.To == variant.Desktop.URLPrefix() &&
		r.Status == 302 && len(r.Conditions) == 0
}

func mobileRootRule(e *Env) error {
	rules, err := redirectRules(e)
	if err != nil {
		return err
	}
	if findRule(rules, isMobileRoot) < 0 {
		return fmt.Errorf("no \"/ %s 302 User-Agent=...\" rule", variant.Mobile.URLPrefix())
	}
	return nil
}

func desktopRootRule(e *Env) error {
	rules, err := redirectRules(e)
	if err != nil {
		return err
	}
	di := findRule(rules, isDesktopRoot)
	if di < 0 {
		return fmt.Errorf("no unconditional \"/ %s 302\" rule", variant.Desktop.URLPrefix())
	}
	if mi := findRule(rules, isMobileRoot); mi > di {
		return errors.New("desktop fallback precedes the mobile rule")
	}
	return nil
}

func spaFallbacks(e *Env) error {
	rules, err := redirectRules(e)
	if err != nil {
		return err
	}
	for _, p := range variant.All() {
		from := p.URLPrefix() + "*"
		to := p.URLPrefix() + layout.ShellFile
		if findRule(rules, func(r routing.Rule) bool {
			return r.From == from && r.To == to && r.Status == 200 && len(r.Conditions) == 0
		}) < 0 {
			return fmt.Errorf("no \"%s %s 200\" rule", from, to)
		}
	}
	return nil
}

func authCallbacks(e *Env) error {
	rules, err := redirectRules(e)
	if err != nil {
		return err
	}
	var missing []string
	for _, typ := range routing.AuthCallbackTypes {
		q := "type=" + typ
		if findRule(rules, func(r routing.Rule) bool {
			return r.From == "/" && r.HasQuery(q) && strings.HasPrefix(r.To, routing.AuthRedirectPath) && r.Status == 200
		}) < 0 {
			missing = append(missing, q)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("no rule for %s", strings.Join(missing, ", "))
	}
	return nil
}

func authPage(e *Env) error {
	page, err := e.Read(e.Layout.AuthRedirect())
	if err != nil {
		return err
	}
	for _, want := range []string{"navigator.userAgent", "location.search", "location.hash",
		`"` + variant.Mobile.URLPrefix() + `"`, `"` + variant.Desktop.URLPrefix() + `"`} {
		if !strings.Contains(page, want) {
			return fmt.Errorf("page does not reference %s", want)
		}
	}
	return nil
}
