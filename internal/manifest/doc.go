// Package manifest reads the version-bearing files of the project
// (package.json, the native shell's tauri.conf.json and CHANGELOG.json),
// enforces strict X.Y.Z versions and validates the changelog against its
// embedded JSON schema.
package manifest
