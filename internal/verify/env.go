package verify

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/shirt-tracker/splitbuild/internal/layout"
)

// Env gives checks cached, read-only access to the project tree.
type Env struct {
	Layout layout.Layout
	files  map[string]string
	docs   map[string]*Document
}

func newEnv(l layout.Layout) *Env {
	return &Env{
		Layout: l,
		files:  make(map[string]string),
		docs:   make(map[string]*Document),
	}
}

// errMissing is wrapped by Read when a file does not exist.
var errMissing = errors.New("missing")

// Read returns the contents of path.
func (e *Env) Read(path string) (string, error) {
	if s, ok := e.files[path]; ok {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%s %w", e.Layout.Rel(path), errMissing)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", e.Layout.Rel(path), err)
	}
	e.files[path] = string(data)
	return string(data), nil
}

// Exists reports whether path exists.
func (e *Env) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Document returns the parsed HTML document at path.
func (e *Env) Document(path string) (*Document, error) {
	if d, ok := e.docs[path]; ok {
		return d, nil
	}
	src, err := e.Read(path)
	if err != nil {
		return nil, err
	}
	d := ParseDocument(src)
	e.docs[path] = d
	return d, nil
}
