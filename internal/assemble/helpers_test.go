package assemble

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shirt-tracker/splitbuild/internal/layout"
	"github.com/shirt-tracker/splitbuild/internal/minify"
)

const sharedStyle = `:root { --accent: #2a6; }
.card { padding: 8px; }
/* PLATFORM:desktop */
.tab-btn.rename { cursor: text; }
/* /PLATFORM:desktop */
/* PLATFORM:mobile */
.mobile-action-grid { display: grid; }
/* /PLATFORM:mobile */
.footer { margin: 0; }
`

const sharedScript = `const APP_VERSION = "1.4.2";
const PLATFORM = "__PLATFORM__";
const LAST_COMMIT_DATE = "1970-01-01T00:00:00Z";
const CHANGELOG = /* __CHANGELOG_INJECT__ */ [];
const PRICE = "$&";
function label(s) { return s.replace(/x/g, "$1"); }
`

const sharedSW = `const CACHE_NAME = "shirt-tracker-v__SW_VERSION__";
self.addEventListener("install", () => self.skipWaiting());
`

const changelogJSON = `[
  {"version": "1.4.2", "date": "2026-03-14", "changes": ["Totals now read $& correctly"]}
]
`

func shell(title string) string {
	return `<!DOCTYPE html>
<html>
<head>
  <title>` + title + `</title>
  <meta name="deployed" content="__NETLIFY_DEPLOY_DATE__">
  <link rel="stylesheet" href="style.css">
</head>
<body>
  <p>Shirt Tracker v1.4.2</p>
  <input id="app-update-date" value="">
  <script src="app.js"></script>
</body>
</html>
`
}

// writeTree creates files under root from a relative path -> content map.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// projectFiles is a complete source tree.
func projectFiles() map[string]string {
	return map[string]string{
		"apps/shared/style.shared.css":         sharedStyle,
		"apps/shared/app.shared.js":            sharedScript,
		"apps/shared/sw.shared.js":             sharedSW,
		"apps/web-desktop/src/index.html":      shell("Desktop"),
		"apps/web-desktop/src/assets/logo.svg": "<svg/>",
		"apps/web-mobile/src/index.html":       shell("Mobile"),
		"package.json":                         `{"name":"shirt-tracker","version":"1.4.2"}`,
		"CHANGELOG.json":                       changelogJSON,
	}
}

// passthrough returns its input unchanged.
type passthrough struct{}

func (passthrough) Minify(ctx context.Context, text string, kind minify.Kind) (string, error) {
	return text, ctx.Err()
}

// failing rejects one kind.
type failing struct{ kind minify.Kind }

func (f failing) Minify(_ context.Context, text string, kind minify.Kind) (string, error) {
	if kind == f.kind {
		return "", &minify.TransformError{Messages: []string{"1:1: unexpected token"}}
	}
	return text, nil
}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestAssembler(root string) *Assembler {
	return &Assembler{
		Layout:   layout.New(root),
		Minifier: passthrough{},
		Now:      func() time.Time { return fixedNow },
		LastChange: func(context.Context, string, ...string) (string, error) {
			return "2026-03-13T18:00:00+01:00", nil
		},
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func assertContains(t *testing.T, name, text string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(text, w) {
			t.Errorf("%s: missing %q", name, w)
		}
	}
}

func assertNotContains(t *testing.T, name, text string, unwanted ...string) {
	t.Helper()
	for _, u := range unwanted {
		if strings.Contains(text, u) {
			t.Errorf("%s: unexpected %q", name, u)
		}
	}
}

func assertMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("%s should not exist", path)
	}
}
