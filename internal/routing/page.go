package routing

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/shirt-tracker/splitbuild/internal/branding"
	"github.com/shirt-tracker/splitbuild/internal/variant"
)

//go:embed templates/auth-redirect.html.tmpl
var authRedirectSource string

var authRedirectTmpl = template.Must(template.New("auth-redirect").Parse(authRedirectSource))

type pageData struct {
	Title         string
	MobilePattern string
	MobilePrefix  string
	DesktopPrefix string
}

// AuthRedirectPage renders the page that inspects the user agent and forwards
// to the matching variant, preserving query string and fragment.
func AuthRedirectPage() (string, error) {
	data := pageData{
		Title:         branding.DisplayName(),
		MobilePattern: branding.MobileUserAgent(),
		MobilePrefix:  variant.Mobile.URLPrefix(),
		DesktopPrefix: variant.Desktop.URLPrefix(),
	}
	var b strings.Builder
	if err := authRedirectTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", AuthRedirectPath, err)
	}
	return b.String(), nil
}
