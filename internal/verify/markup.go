package verify

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is what a finished HTML file embeds and references.
type Document struct {
	Raw string

	// Styles are the bodies of <style> elements.
	Styles []string

	// Scripts are the bodies of <script> elements without a src attribute.
	Scripts []string

	// ScriptSrcs are the src attributes of external scripts.
	ScriptSrcs []string

	// Stylesheets are the href attributes of <link rel="stylesheet">.
	Stylesheets []string
}

// ParseDocument tokenizes src and collects embedded and referenced resources.
func ParseDocument(src string) *Document {
	doc := &Document{Raw: src}
	z := html.NewTokenizer(strings.NewReader(src))

	var inside atom.Atom
	var body strings.Builder
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return doc
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.DataAtom {
			case atom.Style:
				inside = atom.Style
				body.Reset()
			case atom.Script:
				if src, ok := attr(tok, "src"); ok {
					doc.ScriptSrcs = append(doc.ScriptSrcs, src)
					continue
				}
				inside = atom.Script
				body.Reset()
			case atom.Link:
				if rel, _ := attr(tok, "rel"); strings.EqualFold(rel, "stylesheet") {
					href, _ := attr(tok, "href")
					doc.Stylesheets = append(doc.Stylesheets, href)
				}
			}
		case html.TextToken:
			if inside != 0 {
				body.Write(z.Text())
			}
		case html.EndTagToken:
			tok := z.Token()
			if inside == 0 || tok.DataAtom != inside {
				continue
			}
			if inside == atom.Style {
				doc.Styles = append(doc.Styles, body.String())
			} else {
				doc.Scripts = append(doc.Scripts, body.String())
			}
			inside = 0
		}
	}
}

// Style returns all embedded stylesheet text.
func (d *Document) Style() string { return strings.Join(d.Styles, "\n") }

// Script returns all embedded script text.
func (d *Document) Script() string { return strings.Join(d.Scripts, "\n") }

// References reports whether the document links or loads name externally.
func (d *Document) References(name string) bool {
	for _, s := range append(append([]string{}, d.Stylesheets...), d.ScriptSrcs...) {
		if s == name || strings.HasSuffix(s, "/"+name) {
			return true
		}
	}
	return false
}

func attr(tok html.Token, key string) (string, bool) {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
