package inline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// File names the inliner looks for in a variant directory.
const (
	ShellFile  = "index.html"
	StyleFile  = "style.css"
	ScriptFile = "app.js"
)

var (
	styleLinkRe  = regexp.MustCompile(`(?m)^([ \t]*)<link rel="stylesheet" href="style\.css">[ \t\r]*$`)
	scriptTagRe  = regexp.MustCompile(`(?m)^([ \t]*)<script src="app\.js"></script>[ \t\r]*$`)
	closeStyleRe = regexp.MustCompile(`(?i)</style`)
	closeScrRe   = regexp.MustCompile(`(?i)</script`)
)

// ErrNoEmbedLine is returned when a standalone file exists but the shell has
// no line referencing it.
var ErrNoEmbedLine = errors.New("no embedding line in markup shell")

// Result reports what Dir merged.
type Result struct {
	StyleInlined  bool
	ScriptInlined bool
}

// Dir inlines dir/style.css and dir/app.js into dir/index.html. It is a no-op
// when neither standalone file exists.
func Dir(dir string) (Result, error) {
	var res Result

	stylePath := filepath.Join(dir, StyleFile)
	scriptPath := filepath.Join(dir, ScriptFile)
	css, hasStyle, err := readOptional(stylePath)
	if err != nil {
		return res, err
	}
	js, hasScript, err := readOptional(scriptPath)
	if err != nil {
		return res, err
	}
	if !hasStyle && !hasScript {
		return res, nil
	}

	shellPath := filepath.Join(dir, ShellFile)
	data, err := os.ReadFile(shellPath)
	if err != nil {
		return res, fmt.Errorf("reading markup shell %s: %w", shellPath, err)
	}
	html := string(data)

	if hasStyle {
		html, err = embed(html, styleLinkRe, "style", EscapeStyle(css))
		if err != nil {
			return res, fmt.Errorf("inlining %s into %s: %w", stylePath, shellPath, err)
		}
		res.StyleInlined = true
	}
	if hasScript {
		html, err = embed(html, scriptTagRe, "script", EscapeScript(js))
		if err != nil {
			return res, fmt.Errorf("inlining %s into %s: %w", scriptPath, shellPath, err)
		}
		res.ScriptInlined = true
	}

	info, err := os.Stat(shellPath)
	if err != nil {
		return res, fmt.Errorf("stat %s: %w", shellPath, err)
	}
	if err := os.WriteFile(shellPath, []byte(html), info.Mode().Perm()); err != nil {
		return res, fmt.Errorf("writing %s: %w", shellPath, err)
	}

	// The merged document is now the only carrier of this content.
	if hasStyle {
		if err := os.Remove(stylePath); err != nil {
			return res, fmt.Errorf("removing %s: %w", stylePath, err)
		}
	}
	if hasScript {
		if err := os.Remove(scriptPath); err != nil {
			return res, fmt.Errorf("removing %s: %w", scriptPath, err)
		}
	}
	return res, nil
}

// EscapeStyle breaks up every "</style" so embedded CSS cannot close its tag.
func EscapeStyle(css string) string {
	return closeStyleRe.ReplaceAllStringFunc(css, escapeClose)
}

// EscapeScript breaks up every "</script" so embedded JS cannot close its tag.
func EscapeScript(js string) string {
	return closeScrRe.ReplaceAllStringFunc(js, escapeClose)
}

// escapeClose turns "</tag" into "<\/tag".
func escapeClose(m string) string {
	return `<\/` + m[2:]
}

// embed replaces the first line matched by re with an inline <tag> block
// holding body. body is copied byte for byte and is not re-indented: template
// literals in minified scripts span lines.
func embed(html string, re *regexp.Regexp, tag, body string) (string, error) {
	loc := re.FindStringSubmatchIndex(html)
	if loc == nil {
		return html, ErrNoEmbedLine
	}
	indent := html[loc[2]:loc[3]]

	var b strings.Builder
	b.Grow(len(html) + len(body) + 32)
	b.WriteString(html[:loc[0]])
	b.WriteString(indent + "<" + tag + ">\n")
	b.WriteString(strings.TrimRight(body, "\n"))
	b.WriteString("\n" + indent + "</" + tag + ">")
	b.WriteString(html[loc[1]:])
	return b.String(), nil
}

func readOptional(path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), true, nil
}
