package assemble

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/shirt-tracker/splitbuild/internal/layout"
	"github.com/shirt-tracker/splitbuild/internal/manifest"
	"github.com/shirt-tracker/splitbuild/internal/minify"
	"github.com/shirt-tracker/splitbuild/internal/variant"
)

func TestBuild_PlatformSelectors(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, projectFiles())

	res, err := newTestAssembler(root).Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if res.Version != "1.4.2" {
		t.Errorf("Version = %q, want 1.4.2", res.Version)
	}
	if len(res.Variants) != 2 {
		t.Fatalf("got %d variants, want 2", len(res.Variants))
	}

	l := layout.New(root)
	desktop := readFile(t, l.VariantFile(variant.Desktop, layout.ShellFile))
	mobile := readFile(t, l.VariantFile(variant.Mobile, layout.ShellFile))

	assertContains(t, "desktop", desktop, ".tab-btn.rename", ".card", ".footer", `const PLATFORM = "desktop";`)
	assertNotContains(t, "desktop", desktop, ".mobile-action-grid", "PLATFORM:", "__PLATFORM__")

	assertContains(t, "mobile", mobile, ".mobile-action-grid", ".card", ".footer", `const PLATFORM = "mobile";`)
	assertNotContains(t, "mobile", mobile, ".tab-btn.rename", "PLATFORM:", "__PLATFORM__")
}

func TestBuild_InlinesAndCleansUp(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, projectFiles())

	res, err := newTestAssembler(root).Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	l := layout.New(root)
	for _, vr := range res.Variants {
		if !vr.Inlined.StyleInlined || !vr.Inlined.ScriptInlined {
			t.Errorf("%s: Inlined = %+v", vr.Platform, vr.Inlined)
		}
		if !vr.PlatformResolved || !vr.ChangelogInjected {
			t.Errorf("%s: PlatformResolved=%v ChangelogInjected=%v", vr.Platform, vr.PlatformResolved, vr.ChangelogInjected)
		}
		html := readFile(t, l.VariantFile(vr.Platform, layout.ShellFile))
		assertContains(t, vr.Platform.String(), html, "<style>", "<script>")
		assertNotContains(t, vr.Platform.String(), html, `href="style.css"`, `src="app.js"`)
		assertMissing(t, l.VariantFile(vr.Platform, layout.StyleFile))
		assertMissing(t, l.VariantFile(vr.Platform, layout.ScriptFile))
	}
}

func TestBuild_SubstitutesBuildValues(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, projectFiles())

	a := newTestAssembler(root)
	a.DeployDate = "2026-03-14T09:00:00.000Z"
	if _, err := a.Build(context.Background()); err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	l := layout.New(root)
	html := readFile(t, l.VariantFile(variant.Mobile, layout.ShellFile))
	assertContains(t, "mobile", html,
		`const LAST_COMMIT_DATE = "2026-03-13T18:00:00+01:00";`,
		`"changes":["Totals now read $& correctly"]`,
		`content="2026-03-14T09:00:00.000Z"`,
		`id="app-update-date" value="`+LocalStamp(fixedNow)+`"`,
	)
	assertNotContains(t, "mobile", html, "__CHANGELOG_INJECT__", DeployDateToken)

	sw := readFile(t, l.VariantFile(variant.Desktop, layout.ServiceWorker))
	assertContains(t, "sw.js", sw, `"shirt-tracker-v1.4.2"`)
	assertNotContains(t, "sw.js", sw, "__SW_VERSION__")

	src := readFile(t, l.Shell(variant.Mobile))
	if !strings.Contains(src, DeployDateToken) {
		t.Error("source shell must keep the deploy-date token")
	}
}

func TestBuild_PreservesDollarSequences(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, projectFiles())

	if _, err := newTestAssembler(root).Build(context.Background()); err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	corruption := regexp.MustCompile(`(?m);\$&|^\$&`)
	l := layout.New(root)
	for _, p := range variant.All() {
		html := readFile(t, l.VariantFile(p, layout.ShellFile))
		assertContains(t, p.String(), html, `const PRICE = "$&";`, `s.replace(/x/g, "$1")`)
		if loc := corruption.FindStringIndex(html); loc != nil {
			t.Errorf("%s: replacement corruption at %d: %q", p, loc[0], html[loc[0]:loc[1]])
		}
	}
}

func TestBuild_WritesRouting(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, projectFiles())

	res, err := newTestAssembler(root).Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	redirects := readFile(t, res.Redirects)
	assertContains(t, "_redirects", redirects, "/ /m/ 302 User-Agent=", "\n/ /d/ 302\n")
	page := readFile(t, res.AuthRedirect)
	assertContains(t, "auth-redirect.html", page, "navigator.userAgent", "location.hash")
}

func TestBuild_SyncsNativeShell(t *testing.T) {
	root := t.TempDir()
	files := projectFiles()
	files["apps/desktop-tauri/src-tauri/tauri.conf.json"] = `{"version":"1.4.2"}`
	files["apps/web-desktop/src/manifest.webmanifest"] = `{"name":"Shirt Tracker"}`
	writeTree(t, root, files)

	res, err := newTestAssembler(root).Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if !res.NativeSynced {
		t.Fatal("NativeSynced = false")
	}

	l := layout.New(root)
	want := readFile(t, l.VariantFile(variant.Desktop, layout.ShellFile))
	got := readFile(t, filepath.Join(l.NativeShellSrc(), layout.ShellFile))
	if got != want {
		t.Error("native shell document differs from the desktop artifact")
	}
	readFile(t, filepath.Join(l.NativeShellSrc(), "assets", "logo.svg"))
	readFile(t, filepath.Join(l.NativeShellSrc(), layout.WebManifest))
}

func TestBuild_NoNativeShell(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, projectFiles())

	res, err := newTestAssembler(root).Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if res.NativeSynced {
		t.Error("NativeSynced = true without a native shell")
	}
	assertMissing(t, layout.New(root).NativeShellRoot())
}

func TestBuild_MissingSources(t *testing.T) {
	tests := []struct {
		name   string
		remove string
	}{
		{"shared style", "apps/shared/style.shared.css"},
		{"shared script", "apps/shared/app.shared.js"},
		{"desktop shell", "apps/web-desktop/src/index.html"},
		{"mobile shell", "apps/web-mobile/src/index.html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			files := projectFiles()
			delete(files, tt.remove)
			writeTree(t, root, files)

			_, err := newTestAssembler(root).Build(context.Background())
			var missing *MissingSourceError
			if !errors.As(err, &missing) {
				t.Fatalf("Build() error = %v, want *MissingSourceError", err)
			}
			if !strings.HasSuffix(filepath.ToSlash(missing.Path), tt.remove) {
				t.Errorf("Path = %q, want suffix %q", missing.Path, tt.remove)
			}
			assertMissing(t, layout.New(root).OutputRoot())
		})
	}
}

func TestBuild_MalformedVersionLeavesOutputAlone(t *testing.T) {
	root := t.TempDir()
	files := projectFiles()
	files["apps/shared/app.shared.js"] = strings.Replace(sharedScript, `"1.4.2"`, `"1.4"`, 1)
	files["apps/web-root/d/previous.txt"] = "from the last build"
	writeTree(t, root, files)

	_, err := newTestAssembler(root).Build(context.Background())
	var mv *manifest.MalformedVersionError
	if !errors.As(err, &mv) {
		t.Fatalf("Build() error = %v, want *manifest.MalformedVersionError", err)
	}
	if mv.Value != "1.4" || mv.Source != manifest.SourceScript {
		t.Errorf("error = %+v", mv)
	}
	readFile(t, filepath.Join(root, "apps/web-root/d/previous.txt"))
}

func TestBuild_InvalidChangelog(t *testing.T) {
	root := t.TempDir()
	files := projectFiles()
	files["CHANGELOG.json"] = `[{"version":"1.4.2"}]`
	writeTree(t, root, files)

	_, err := newTestAssembler(root).Build(context.Background())
	var se *manifest.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("Build() error = %v, want *manifest.SchemaError", err)
	}
}

func TestBuild_VersionTokenUsesPackageManifest(t *testing.T) {
	root := t.TempDir()
	files := projectFiles()
	files["apps/shared/app.shared.js"] = strings.Replace(sharedScript, `"1.4.2"`, `"__APP_VERSION__"`, 1)
	files["package.json"] = `{"name":"shirt-tracker","version":"2.0.1"}`
	writeTree(t, root, files)

	res, err := newTestAssembler(root).Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if res.Version != "2.0.1" {
		t.Errorf("Version = %q, want 2.0.1", res.Version)
	}
	html := readFile(t, layout.New(root).VariantFile(variant.Desktop, layout.ShellFile))
	assertContains(t, "desktop", html, `const APP_VERSION = "2.0.1";`)
}

func TestBuild_MinifierErrorNamesFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, projectFiles())

	a := newTestAssembler(root)
	a.Minifier = failing{kind: minify.KindCSS}
	_, err := a.Build(context.Background())
	var me *minify.Error
	if !errors.As(err, &me) {
		t.Fatalf("Build() error = %v, want *minify.Error", err)
	}
	if filepath.Base(me.Path) != layout.StyleFile {
		t.Errorf("Path = %q, want a %s", me.Path, layout.StyleFile)
	}
	if len(me.Messages) != 1 {
		t.Errorf("Messages = %v", me.Messages)
	}
}

func TestBuild_RemovesStaleOutput(t *testing.T) {
	root := t.TempDir()
	files := projectFiles()
	files["apps/web-root/m/stale.js"] = "old"
	files["apps/web-root/orphan.html"] = "old"
	writeTree(t, root, files)

	if _, err := newTestAssembler(root).Build(context.Background()); err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	assertMissing(t, filepath.Join(root, "apps/web-root/m/stale.js"))
	assertMissing(t, filepath.Join(root, "apps/web-root/orphan.html"))
}

func TestBuild_ShellServiceWorkerFallback(t *testing.T) {
	root := t.TempDir()
	files := projectFiles()
	delete(files, "apps/shared/sw.shared.js")
	files["apps/web-mobile/src/sw.js"] = sharedSW
	writeTree(t, root, files)

	res, err := newTestAssembler(root).Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	for _, vr := range res.Variants {
		if want := vr.Platform == variant.Mobile; vr.ServiceWorker != want {
			t.Errorf("%s: ServiceWorker = %v, want %v", vr.Platform, vr.ServiceWorker, want)
		}
	}
	l := layout.New(root)
	assertContains(t, "mobile sw.js", readFile(t, l.VariantFile(variant.Mobile, layout.ServiceWorker)), "shirt-tracker-v1.4.2")
	assertMissing(t, l.VariantFile(variant.Desktop, layout.ServiceWorker))
}

func TestBuild_LastChangeFailureIsNotFatal(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, projectFiles())

	a := newTestAssembler(root)
	a.LastChange = func(context.Context, string, ...string) (string, error) {
		return "", errors.New("not a git repository")
	}
	res, err := a.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if res.LastChange != "" {
		t.Errorf("LastChange = %q, want empty", res.LastChange)
	}
	html := readFile(t, layout.New(root).VariantFile(variant.Desktop, layout.ShellFile))
	assertContains(t, "desktop", html, `const LAST_COMMIT_DATE = "1970-01-01T00:00:00Z";`)
}

func TestBuild_CanceledContext(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, projectFiles())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestAssembler(root).Build(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Build() error = %v, want context.Canceled", err)
	}
}

func TestBuild_Esbuild(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, projectFiles())

	a := newTestAssembler(root)
	a.Minifier = minify.Esbuild{}
	if _, err := a.Build(context.Background()); err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	l := layout.New(root)
	desktop := readFile(t, l.VariantFile(variant.Desktop, layout.ShellFile))
	mobile := readFile(t, l.VariantFile(variant.Mobile, layout.ShellFile))
	assertContains(t, "desktop", desktop, ".tab-btn.rename", `"desktop"`)
	assertNotContains(t, "desktop", desktop, ".mobile-action-grid", "__PLATFORM__")
	assertContains(t, "mobile", mobile, ".mobile-action-grid", `"mobile"`)
	assertNotContains(t, "mobile", mobile, ".tab-btn.rename", "__PLATFORM__")
	if _, err := os.Stat(l.VariantFile(variant.Mobile, layout.ServiceWorker)); err != nil {
		t.Errorf("sw.js: %v", err)
	}
}
