package assemble

import (
	"testing"
	"time"
)

func TestStampShell(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		deploy  string
		updated string
		want    string
	}{
		{
			name:   "deploy token everywhere",
			html:   `<meta content="__NETLIFY_DEPLOY_DATE__"><span>__NETLIFY_DEPLOY_DATE__</span>`,
			deploy: "2026-03-14T09:00:00.000Z",
			want:   `<meta content="2026-03-14T09:00:00.000Z"><span>2026-03-14T09:00:00.000Z</span>`,
		},
		{
			name:   "quotes dropped from deploy date",
			html:   `<meta name="deployed" content="__NETLIFY_DEPLOY_DATE__">`,
			deploy: `2026-03-14"><script>x()</script>`,
			want:   `<meta name="deployed" content="2026-03-14><script>x()</script>">`,
		},
		{
			name:    "update date replaces existing value",
			html:    `<input id="app-update-date" value="stale">`,
			updated: "3/14/2026, 9:30:00 AM",
			want:    `<input id="app-update-date" value="3/14/2026, 9:30:00 AM">`,
		},
		{
			name:    "dollar sequences stay literal",
			html:    `<input id="app-update-date" value="">`,
			updated: "$&${1}",
			want:    `<input id="app-update-date" value="$&${1}">`,
		},
		{
			name:    "no attribute",
			html:    `<p>plain</p>`,
			updated: "now",
			want:    `<p>plain</p>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stampShell(tt.html, tt.deploy, tt.updated); got != tt.want {
				t.Errorf("stampShell() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeployStamp(t *testing.T) {
	ts := time.Date(2026, 3, 14, 10, 30, 5, 123e6, time.FixedZone("CET", 3600))
	if got, want := DeployStamp(ts), "2026-03-14T09:30:05.123Z"; got != want {
		t.Errorf("DeployStamp() = %q, want %q", got, want)
	}
}
