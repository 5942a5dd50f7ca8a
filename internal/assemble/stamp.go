package assemble

import (
	"regexp"
	"strings"
	"time"
)

// DeployDateToken is replaced in the output copy of each shell.
const DeployDateToken = "__NETLIFY_DEPLOY_DATE__"

var updateDateRe = regexp.MustCompile(`id="app-update-date" value="[^"]*"`)

const (
	isoMillis   = "2006-01-02T15:04:05.000Z07:00"
	localLayout = "1/2/2006, 3:04:05 PM"
)

// DeployStamp formats t the way the host reports deploy dates.
func DeployStamp(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

// LocalStamp formats t for display in the app's "last update" field.
func LocalStamp(t time.Time) string {
	return t.Local().Format(localLayout)
}

// stampShell writes the deploy date and the local update date into a markup
// shell. Both values are inserted literally.
func stampShell(html, deployDate, updated string) string {
	html = strings.ReplaceAll(html, DeployDateToken, strings.ReplaceAll(deployDate, `"`, ""))

	loc := updateDateRe.FindStringIndex(html)
	if loc == nil {
		return html
	}
	attr := `id="app-update-date" value="` + strings.ReplaceAll(updated, `"`, "") + `"`
	return html[:loc[0]] + attr + html[loc[1]:]
}
