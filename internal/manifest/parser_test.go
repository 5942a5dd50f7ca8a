package manifest

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func testPath(name string) string {
	return filepath.Join("testdata", name)
}

func TestParsePackage(t *testing.T) {
	m, err := ParsePackage(testPath("package.json"))
	if err != nil {
		t.Fatalf("ParsePackage() error: %v", err)
	}
	if m.Name != "shirt-tracker" {
		t.Errorf("Name = %q, want %q", m.Name, "shirt-tracker")
	}
	if m.Version != "1.4.2" {
		t.Errorf("Version = %q, want %q", m.Version, "1.4.2")
	}
}

func TestParsePackage_Missing(t *testing.T) {
	_, err := ParsePackage(testPath("nope.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "nope.json") {
		t.Errorf("error %q should name the file", err)
	}
}

func TestParseNativeConfig(t *testing.T) {
	c, err := ParseNativeConfig(testPath("tauri.conf.json"))
	if err != nil {
		t.Fatalf("ParseNativeConfig() error: %v", err)
	}
	if c.Version != "1.4.2" {
		t.Errorf("Version = %q, want %q", c.Version, "1.4.2")
	}
	if c.ProductName != "Shirt Tracker" {
		t.Errorf("ProductName = %q", c.ProductName)
	}
}

func TestParseChangelog(t *testing.T) {
	c, err := ParseChangelog(testPath("changelog-valid.json"))
	if err != nil {
		t.Fatalf("ParseChangelog() error: %v", err)
	}
	if len(c.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(c.Entries))
	}
	latest := c.Latest()
	if latest.Version != "1.4.2" || latest.Date != "2026-03-14" || len(latest.Changes) != 2 {
		t.Errorf("Latest() = %+v", latest)
	}
	if strings.Contains(c.Raw, "\n") {
		t.Errorf("Raw should be compacted, got %q", c.Raw)
	}
	if !strings.Contains(c.Raw, "like $& no longer") {
		t.Errorf("Raw lost literal text: %q", c.Raw)
	}
	if !strings.HasPrefix(c.Raw, `[{"version":"1.4.2"`) {
		t.Errorf("Raw = %q", c.Raw)
	}
}

func TestParseChangelog_SchemaViolations(t *testing.T) {
	files := []string{
		"changelog-empty.json",
		"changelog-missing-changes.json",
		"changelog-bad-version.json",
		"changelog-not-array.json",
	}
	for _, file := range files {
		t.Run(file, func(t *testing.T) {
			_, err := ParseChangelog(testPath(file))
			var se *SchemaError
			if !errors.As(err, &se) {
				t.Fatalf("ParseChangelog(%s) error = %v, want *SchemaError", file, err)
			}
			if len(se.Issues) == 0 {
				t.Error("expected at least one issue")
			}
		})
	}
}

func TestParseChangelog_MalformedJSON(t *testing.T) {
	_, err := ParseChangelog(testPath("changelog-truncated.json"))
	if err == nil {
		t.Fatal("expected error for truncated JSON")
	}
	var se *SchemaError
	if errors.As(err, &se) {
		t.Errorf("malformed JSON should not be reported as a schema error: %v", err)
	}
}

func TestLatest_Empty(t *testing.T) {
	var c *Changelog
	if c.Latest() != nil {
		t.Error("nil changelog should have no latest entry")
	}
	if (&Changelog{}).Latest() != nil {
		t.Error("empty changelog should have no latest entry")
	}
}
