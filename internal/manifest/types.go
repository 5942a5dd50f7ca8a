package manifest

// PackageManifest is the subset of package.json the build reads.
type PackageManifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// NativeConfig is the subset of the native shell's tauri.conf.json the
// build reads.
type NativeConfig struct {
	ProductName string `json:"productName"`
	Version     string `json:"version"`
	Identifier  string `json:"identifier"`
}

// ChangelogEntry is one release in CHANGELOG.json.
type ChangelogEntry struct {
	Version string   `json:"version"`
	Date    string   `json:"date"`
	Changes []string `json:"changes"`
}

// Changelog is the parsed CHANGELOG.json, newest release first. Raw holds
// the file as compacted JSON, ready to splice into the script.
type Changelog struct {
	Entries []ChangelogEntry
	Raw     string
}

// Latest returns the newest release, or nil if the changelog is empty.
func (c *Changelog) Latest() *ChangelogEntry {
	if c == nil || len(c.Entries) == 0 {
		return nil
	}
	return &c.Entries[0]
}

// Source names one place a version string was read from.
type Source string

// Version-bearing sources.
const (
	SourcePackage   Source = "package.json"
	SourceScript    Source = "app.shared.js"
	SourceNative    Source = "tauri.conf.json"
	SourceChangelog Source = "CHANGELOG.json"
)
