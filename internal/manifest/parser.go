package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// ParsePackage reads package.json.
func ParsePackage(path string) (*PackageManifest, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	var m PackageManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &m, nil
}

// ParseNativeConfig reads the native shell's tauri.conf.json.
func ParseNativeConfig(path string) (*NativeConfig, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	var c NativeConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &c, nil
}

// ParseChangelog reads CHANGELOG.json and validates it against the schema.
// Schema violations are returned as a *SchemaError.
func ParseChangelog(path string) (*Changelog, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	result, err := Validate(data)
	if err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}
	if !result.Valid {
		return nil, &SchemaError{Path: path, Issues: result.Issues}
	}

	var entries []ChangelogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return nil, fmt.Errorf("compacting %s: %w", path, err)
	}
	return &Changelog{Entries: entries, Raw: compact.String()}, nil
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
