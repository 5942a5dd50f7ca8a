package assemble

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shirt-tracker/splitbuild/internal/layout"
	"github.com/shirt-tracker/splitbuild/internal/variant"
)

// syncNative copies the finished desktop document and its static assets into
// the native desktop shell's frontend directory.
func (a *Assembler) syncNative() error {
	l := a.Layout
	dst := l.NativeShellSrc()
	if err := os.MkdirAll(dst, layout.DirPerm); err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	doc := l.VariantFile(variant.Desktop, layout.ShellFile)
	if err := copyFile(doc, filepath.Join(dst, layout.ShellFile)); err != nil {
		return fmt.Errorf("copying %s: %w", doc, err)
	}

	shell := l.ShellDir(variant.Desktop)
	for _, sub := range []string{layout.AssetsSubdir, layout.FontsSubdir} {
		from := filepath.Join(shell, sub)
		if !exists(from) {
			continue
		}
		if err := copyDir(from, filepath.Join(dst, sub)); err != nil {
			return fmt.Errorf("copying %s: %w", from, err)
		}
	}

	manifestPath := filepath.Join(shell, layout.WebManifest)
	if exists(manifestPath) {
		if err := copyFile(manifestPath, filepath.Join(dst, layout.WebManifest)); err != nil {
			return fmt.Errorf("copying %s: %w", manifestPath, err)
		}
	}
	return nil
}
