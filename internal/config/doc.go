// Package config manages per-project settings stored in .splitbuild.yaml at
// the project root, overridable through SPLITBUILD_* environment variables.
package config
