package minify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// Kind selects the loader used to parse the input.
type Kind int

const (
	KindCSS Kind = iota
	KindJS
)

func (k Kind) String() string {
	switch k {
	case KindCSS:
		return "css"
	case KindJS:
		return "js"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// KindFor picks the kind from a file extension.
func KindFor(path string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".css":
		return KindCSS, nil
	case ".js", ".mjs":
		return KindJS, nil
	default:
		return 0, fmt.Errorf("no minifier for %s", path)
	}
}

// Minifier turns source text into minified text of the same kind.
type Minifier interface {
	Minify(ctx context.Context, text string, kind Kind) (string, error)
}

// Error is a minifier failure attached to the file being minified.
type Error struct {
	Path     string
	Messages []string
	Err      error
}

func (e *Error) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("minifying %s: %s", e.Path, strings.Join(e.Messages, "; "))
	}
	return fmt.Sprintf("minifying %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// TransformError carries the diagnostics esbuild reported for one input.
type TransformError struct {
	Messages []string
}

func (e *TransformError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// Esbuild minifies with esbuild's in-process transform API.
type Esbuild struct {
	// Target is the JavaScript language target. Zero means ES2020.
	Target api.Target
}

// Minify implements Minifier.
func (m Esbuild) Minify(ctx context.Context, text string, kind Kind) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	opts := api.TransformOptions{
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
		LegalComments:     api.LegalCommentsInline,
		LogLevel:          api.LogLevelSilent,
	}
	switch kind {
	case KindCSS:
		opts.Loader = api.LoaderCSS
	case KindJS:
		opts.Loader = api.LoaderJS
		opts.Target = m.Target
		if opts.Target == api.DefaultTarget {
			opts.Target = api.ES2020
		}
	default:
		return "", fmt.Errorf("unsupported kind %s", kind)
	}

	result := api.Transform(text, opts)
	if len(result.Errors) > 0 {
		msgs := make([]string, 0, len(result.Errors))
		for _, msg := range result.Errors {
			msgs = append(msgs, formatMessage(msg))
		}
		return "", &TransformError{Messages: msgs}
	}
	return string(result.Code), nil
}

func formatMessage(msg api.Message) string {
	if msg.Location == nil {
		return msg.Text
	}
	return fmt.Sprintf("%d:%d: %s", msg.Location.Line, msg.Location.Column, msg.Text)
}

// File minifies the file at path in place. The kind is taken from the
// extension. Every failure is returned as *Error naming path.
func File(ctx context.Context, m Minifier, path string) error {
	kind, err := KindFor(path)
	if err != nil {
		return &Error{Path: path, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return &Error{Path: path, Err: err}
	}

	out, err := m.Minify(ctx, string(data), kind)
	if err != nil {
		minErr := &Error{Path: path, Err: err}
		if te, ok := err.(*TransformError); ok {
			minErr.Messages = te.Messages
		}
		return minErr
	}

	info, err := os.Stat(path)
	if err != nil {
		return &Error{Path: path, Err: err}
	}
	if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
		return &Error{Path: path, Err: err}
	}
	return nil
}
