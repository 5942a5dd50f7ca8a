package assemble

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shirt-tracker/splitbuild/internal/inline"
	"github.com/shirt-tracker/splitbuild/internal/layout"
	"github.com/shirt-tracker/splitbuild/internal/manifest"
	"github.com/shirt-tracker/splitbuild/internal/markers"
	"github.com/shirt-tracker/splitbuild/internal/minify"
	"github.com/shirt-tracker/splitbuild/internal/placeholder"
	"github.com/shirt-tracker/splitbuild/internal/routing"
	"github.com/shirt-tracker/splitbuild/internal/variant"
	"github.com/shirt-tracker/splitbuild/internal/vcs"
)

// LastChangeFunc returns the source-control change timestamp for paths
// relative to root.
type LastChangeFunc func(ctx context.Context, root string, paths ...string) (string, error)

// Assembler builds both platform variants from one project tree.
type Assembler struct {
	Layout   layout.Layout
	Minifier minify.Minifier
	Logger   *zap.Logger

	// Now is the build clock. Defaults to time.Now.
	Now func() time.Time

	// LastChange supplies the LAST_COMMIT_DATE value. Nil disables it.
	LastChange LastChangeFunc

	// DeployDate replaces the deploy-date token. Empty uses the build time.
	DeployDate string
}

// New returns an Assembler for the project at root with the esbuild
// minifier and git change timestamps.
func New(root string, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{
		Layout:     layout.New(root),
		Minifier:   minify.Esbuild{},
		Logger:     logger,
		Now:        time.Now,
		LastChange: vcs.LastChange,
	}
}

// VariantResult describes one finished variant.
type VariantResult struct {
	Platform          variant.Platform
	Dir               string
	Inlined           inline.Result
	ServiceWorker     bool
	PlatformResolved  bool
	ChangelogInjected bool
}

// Result describes a finished build.
type Result struct {
	Version      string
	LastChange   string
	Variants     []VariantResult
	Redirects    string
	AuthRedirect string
	NativeSynced bool
	Duration     time.Duration
}

// sources holds everything read during preflight.
type sources struct {
	style         string
	script        string
	serviceWorker string
	version       string
	changelog     *manifest.Changelog
	lastChange    string
	deployDate    string
	updated       string
}

// Build runs a full build. Every input is checked before apps/web-root is
// touched; a failure after that point leaves the output incomplete.
func (a *Assembler) Build(ctx context.Context) (*Result, error) {
	start := a.now()
	log := a.logger()

	src, err := a.preflight(ctx)
	if err != nil {
		return nil, err
	}
	log.Info("preflight passed",
		zap.String("version", src.version),
		zap.String("last_change", src.lastChange),
		zap.Bool("changelog", src.changelog != nil))

	out := a.Layout.OutputRoot()
	if err := os.RemoveAll(out); err != nil {
		return nil, fmt.Errorf("removing %s: %w", out, err)
	}
	if err := os.MkdirAll(out, layout.DirPerm); err != nil {
		return nil, fmt.Errorf("creating %s: %w", out, err)
	}

	platforms := variant.All()
	variants := make([]VariantResult, len(platforms))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range platforms {
		i, p := i, p
		g.Go(func() error {
			vr, err := a.buildVariant(gctx, p, src)
			if err != nil {
				return fmt.Errorf("building %s variant: %w", p, err)
			}
			variants[i] = vr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Version:    src.version,
		LastChange: src.lastChange,
		Variants:   variants,
	}

	if err := a.writeRouting(res); err != nil {
		return nil, err
	}

	if a.Layout.HasNativeShell() {
		if err := a.syncNative(); err != nil {
			return nil, fmt.Errorf("syncing native shell: %w", err)
		}
		res.NativeSynced = true
		log.Info("synced native shell", zap.String("path", a.Layout.Rel(a.Layout.NativeShellSrc())))
	}

	res.Duration = a.now().Sub(start)
	log.Info("build complete",
		zap.String("version", res.Version),
		zap.Duration("duration", res.Duration))
	return res, nil
}

func (a *Assembler) preflight(ctx context.Context) (*sources, error) {
	l := a.Layout
	src := &sources{}

	style, err := readRequired(l.SharedStyle())
	if err != nil {
		return nil, err
	}
	src.style = style

	script, err := readRequired(l.SharedScript())
	if err != nil {
		return nil, err
	}
	src.script = script

	for _, p := range variant.All() {
		if !exists(l.Shell(p)) {
			return nil, &MissingSourceError{Path: l.Shell(p)}
		}
	}

	if src.version, err = a.resolveVersion(script); err != nil {
		return nil, err
	}

	if exists(l.Changelog()) {
		cl, err := manifest.ParseChangelog(l.Changelog())
		if err != nil {
			return nil, err
		}
		src.changelog = cl
	}

	if exists(l.SharedServiceWorker()) {
		sw, err := os.ReadFile(l.SharedServiceWorker())
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", l.SharedServiceWorker(), err)
		}
		src.serviceWorker = string(sw)
	}

	if a.LastChange != nil {
		stamp, err := a.LastChange(ctx, l.Root, l.Rel(l.SharedScript()), l.Rel(l.SharedStyle()))
		if err != nil {
			a.logger().Warn("change timestamp unavailable", zap.Error(err))
		}
		src.lastChange = stamp
	}

	now := a.now()
	src.deployDate = a.DeployDate
	if src.deployDate == "" {
		src.deployDate = DeployStamp(now)
	}
	src.updated = LocalStamp(now)
	return src, nil
}

// resolveVersion reads APP_VERSION from the shared script, falling back to
// package.json when the script carries the version token.
func (a *Assembler) resolveVersion(script string) (string, error) {
	version, ok := placeholder.AppVersion(script)
	if !ok {
		return "", &manifest.MalformedVersionError{Source: manifest.SourceScript}
	}
	source := manifest.SourceScript
	if version == placeholder.VersionToken {
		path := a.Layout.PackageManifest()
		if !exists(path) {
			return "", &MissingSourceError{Path: path}
		}
		pkg, err := manifest.ParsePackage(path)
		if err != nil {
			return "", err
		}
		version, source = pkg.Version, manifest.SourcePackage
	}
	if _, err := manifest.ParseVersion(source, version); err != nil {
		return "", err
	}
	return version, nil
}

func (a *Assembler) buildVariant(ctx context.Context, p variant.Platform, src *sources) (VariantResult, error) {
	l := a.Layout
	log := a.logger().With(zap.String("platform", p.String()))
	dir := l.VariantDir(p)
	vr := VariantResult{Platform: p, Dir: dir}

	if err := copyDir(l.ShellDir(p), dir); err != nil {
		return vr, fmt.Errorf("copying shell %s: %w", l.ShellDir(p), err)
	}
	shellPath := l.VariantFile(p, layout.ShellFile)
	html, err := os.ReadFile(shellPath)
	if err != nil {
		return vr, fmt.Errorf("reading %s: %w", shellPath, err)
	}
	if err := writeFile(shellPath, stampShell(string(html), src.deployDate, src.updated)); err != nil {
		return vr, err
	}
	log.Debug("copied shell", zap.String("path", l.Rel(dir)))

	if err := ctx.Err(); err != nil {
		return vr, err
	}

	stylePath := l.VariantFile(p, layout.StyleFile)
	if err := writeFile(stylePath, markers.Strip(src.style, p)); err != nil {
		return vr, err
	}
	log.Debug("stripped stylesheet", zap.String("path", l.Rel(stylePath)))

	values := placeholder.Values{Version: src.version, LastChange: src.lastChange}
	if src.changelog != nil {
		values.Changelog = src.changelog.Raw
	}
	resolved := placeholder.Resolve(src.script, p, values)
	if !resolved.PlatformResolved {
		log.Warn("platform placeholder not found in shared script")
	}
	vr.PlatformResolved = resolved.PlatformResolved
	vr.ChangelogInjected = resolved.ChangelogInjected
	scriptPath := l.VariantFile(p, layout.ScriptFile)
	if err := writeFile(scriptPath, resolved.Text); err != nil {
		return vr, err
	}
	log.Debug("resolved script", zap.String("path", l.Rel(scriptPath)))

	swPath := l.VariantFile(p, layout.ServiceWorker)
	sw := src.serviceWorker
	if sw == "" {
		data, err := os.ReadFile(swPath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return vr, fmt.Errorf("reading %s: %w", swPath, err)
		}
		sw = string(data)
	}
	if sw != "" {
		if err := writeFile(swPath, placeholder.ServiceWorker(sw, src.version)); err != nil {
			return vr, err
		}
		vr.ServiceWorker = true
	}

	toMinify := []string{scriptPath, stylePath}
	if vr.ServiceWorker {
		toMinify = append(toMinify, swPath)
	}
	for _, path := range toMinify {
		if err := minify.File(ctx, a.Minifier, path); err != nil {
			return vr, err
		}
		log.Debug("minified", zap.String("path", l.Rel(path)))
	}

	if vr.Inlined, err = inline.Dir(dir); err != nil {
		return vr, fmt.Errorf("inlining %s: %w", l.Rel(dir), err)
	}
	log.Info("variant ready",
		zap.String("path", l.Rel(shellPath)),
		zap.Bool("service_worker", vr.ServiceWorker))
	return vr, nil
}

func (a *Assembler) writeRouting(res *Result) error {
	l := a.Layout
	if err := writeFile(l.Redirects(), routing.Render(routing.Sections())); err != nil {
		return err
	}
	page, err := routing.AuthRedirectPage()
	if err != nil {
		return err
	}
	if err := writeFile(l.AuthRedirect(), page); err != nil {
		return err
	}
	res.Redirects = l.Redirects()
	res.AuthRedirect = l.AuthRedirect()
	a.logger().Info("wrote routing", zap.String("path", l.Rel(l.Redirects())))
	return nil
}

func (a *Assembler) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *Assembler) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

func readRequired(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", &MissingSourceError{Path: path, Err: err}
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), layout.FilePerm); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
