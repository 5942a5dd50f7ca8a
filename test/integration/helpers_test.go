//go:build integration

package integration_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sharedStyle = `:root { --accent: #2a6; }
.card { padding: 8px; }
/* PLATFORM:desktop */
.tab-btn.rename { cursor: text; }
.tab-btn.rename:hover { outline: 1px dashed var(--accent); }
/* /PLATFORM:desktop */
/* PLATFORM:mobile */
.mobile-action-grid { display: grid; grid-template-columns: 1fr 1fr; }
/* /PLATFORM:mobile */
.footer { margin: 0; }
`

const sharedScript = `const APP_VERSION = "3.1.0";
const PLATFORM = "__PLATFORM__";
const LAST_COMMIT_DATE = "1970-01-01T00:00:00Z";
const CHANGELOG = /* __CHANGELOG_INJECT__ */ [];
const CURRENCY = "$&";

function renderTotals(rows) {
  const sum = rows.reduce((a, r) => a + r.price, 0);
  return CURRENCY.replace("$&", "$") + sum.toFixed(2);
}

if (PLATFORM === "mobile") {
  document.body.classList.add("touch");
} else {
  document.body.classList.add("pointer");
}
console.log(APP_VERSION, LAST_COMMIT_DATE, CHANGELOG.length, renderTotals([]));
`

const sharedSW = `const CACHE_NAME = "shirt-tracker-v__SW_VERSION__";
self.addEventListener("install", () => self.skipWaiting());
`

const changelog = `[
  {"version": "3.1.0", "date": "2026-09-30", "changes": ["Rename tabs in place", "Totals show $& literally"]},
  {"version": "3.0.0", "date": "2026-08-01", "changes": ["Split desktop and mobile"]}
]
`

func shellHTML(title string) string {
	return `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>` + title + `</title>
  <meta name="deployed" content="__NETLIFY_DEPLOY_DATE__">
  <link rel="stylesheet" href="style.css">
</head>
<body>
  <dialog id="about"><p>Shirt Tracker v3.1.0</p></dialog>
  <input id="app-update-date" value="">
  <script src="app.js"></script>
</body>
</html>
`
}

// setupProject writes a complete source tree into a temp dir and returns its
// root. withNative adds the desktop native shell.
func setupProject(t *testing.T, withNative bool) string {
	t.Helper()

	root := t.TempDir()
	files := map[string]string{
		"apps/shared/style.shared.css":          sharedStyle,
		"apps/shared/app.shared.js":             sharedScript,
		"apps/shared/sw.shared.js":              sharedSW,
		"apps/web-desktop/src/index.html":       shellHTML("Shirt Tracker"),
		"apps/web-desktop/src/assets/logo.svg":  "<svg/>",
		"apps/web-desktop/src/fonts/inter.woff": "woff",
		"apps/web-mobile/src/index.html":        shellHTML("Shirt Tracker Mobile"),
		"package.json":                          `{"name": "shirt-tracker", "version": "3.1.0"}`,
		"CHANGELOG.json":                        changelog,
	}
	if withNative {
		files["apps/desktop-tauri/src-tauri/tauri.conf.json"] = `{"productName": "Shirt Tracker", "version": "3.1.0", "identifier": "app.shirttracker"}`
	}
	for rel, content := range files {
		writeFile(t, filepath.Join(root, filepath.FromSlash(rel)), content)
	}
	return root
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err, "reading %s", path)
	return string(data)
}

// rewriteFile applies a literal replacement to the file at path.
func rewriteFile(t *testing.T, path, old, new string) {
	t.Helper()
	text := readFile(t, path)
	require.Contains(t, text, old)
	writeFile(t, path, strings.Replace(text, old, new, 1))
}
