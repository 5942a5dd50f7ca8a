package layout

import (
	"os"
	"path/filepath"

	"github.com/shirt-tracker/splitbuild/internal/variant"
)

// Directory and file name constants for the source and output convention.
const (
	AppsDir        = "apps"
	SharedDir      = "shared"
	OutputDir      = "web-root"
	NativeShellDir = "desktop-tauri"

	SharedStyleFile  = "style.shared.css"
	SharedScriptFile = "app.shared.js"
	SharedSWFile     = "sw.shared.js"

	ShellFile      = "index.html"
	StyleFile      = "style.css"
	ScriptFile     = "app.js"
	ServiceWorker  = "sw.js"
	RedirectsFile  = "_redirects"
	AuthRedirect   = "auth-redirect.html"
	PackageFile    = "package.json"
	ChangelogFile  = "CHANGELOG.json"
	NativeConfig   = "tauri.conf.json"
	WebManifest    = "manifest.webmanifest"
	AssetsSubdir   = "assets"
	FontsSubdir    = "fonts"
	shellSrcSubdir = "src"
)

// Permission constants.
const (
	DirPerm  os.FileMode = 0755
	FilePerm os.FileMode = 0644
)

// Layout resolves paths relative to a project root.
type Layout struct {
	Root string
}

// New returns a Layout rooted at root.
func New(root string) Layout {
	return Layout{Root: root}
}

// SharedStyle returns apps/shared/style.shared.css.
func (l Layout) SharedStyle() string {
	return filepath.Join(l.Root, AppsDir, SharedDir, SharedStyleFile)
}

// SharedScript returns apps/shared/app.shared.js.
func (l Layout) SharedScript() string {
	return filepath.Join(l.Root, AppsDir, SharedDir, SharedScriptFile)
}

// SharedServiceWorker returns apps/shared/sw.shared.js.
func (l Layout) SharedServiceWorker() string {
	return filepath.Join(l.Root, AppsDir, SharedDir, SharedSWFile)
}

// SharedDir returns apps/shared.
func (l Layout) SharedDir() string {
	return filepath.Join(l.Root, AppsDir, SharedDir)
}

// ShellDir returns the platform's markup shell directory,
// e.g. apps/web-desktop/src.
func (l Layout) ShellDir(p variant.Platform) string {
	return filepath.Join(l.Root, AppsDir, p.SourceDir(), shellSrcSubdir)
}

// Shell returns the platform's source markup shell.
func (l Layout) Shell(p variant.Platform) string {
	return filepath.Join(l.ShellDir(p), ShellFile)
}

// OutputRoot returns apps/web-root.
func (l Layout) OutputRoot() string {
	return filepath.Join(l.Root, AppsDir, OutputDir)
}

// VariantDir returns the finished variant directory, e.g. apps/web-root/d.
func (l Layout) VariantDir(p variant.Platform) string {
	return filepath.Join(l.OutputRoot(), p.OutputDir())
}

// VariantFile returns a file inside the finished variant directory.
func (l Layout) VariantFile(p variant.Platform, name string) string {
	return filepath.Join(l.VariantDir(p), name)
}

// Redirects returns apps/web-root/_redirects.
func (l Layout) Redirects() string {
	return filepath.Join(l.OutputRoot(), RedirectsFile)
}

// AuthRedirect returns apps/web-root/auth-redirect.html.
func (l Layout) AuthRedirect() string {
	return filepath.Join(l.OutputRoot(), AuthRedirect)
}

// PackageManifest returns the root package.json.
func (l Layout) PackageManifest() string {
	return filepath.Join(l.Root, PackageFile)
}

// Changelog returns the root CHANGELOG.json.
func (l Layout) Changelog() string {
	return filepath.Join(l.Root, ChangelogFile)
}

// NativeShellRoot returns apps/desktop-tauri.
func (l Layout) NativeShellRoot() string {
	return filepath.Join(l.Root, AppsDir, NativeShellDir)
}

// NativeShellSrc returns apps/desktop-tauri/src, where the native shell loads
// its single-file frontend from.
func (l Layout) NativeShellSrc() string {
	return filepath.Join(l.NativeShellRoot(), shellSrcSubdir)
}

// NativeConfigPath returns apps/desktop-tauri/src-tauri/tauri.conf.json.
func (l Layout) NativeConfigPath() string {
	return filepath.Join(l.NativeShellRoot(), "src-tauri", NativeConfig)
}

// HasNativeShell reports whether the native desktop shell project exists.
func (l Layout) HasNativeShell() bool {
	info, err := os.Stat(l.NativeShellRoot())
	return err == nil && info.IsDir()
}

// Rel returns path relative to the project root for display, falling back to
// path itself.
func (l Layout) Rel(path string) string {
	rel, err := filepath.Rel(l.Root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
