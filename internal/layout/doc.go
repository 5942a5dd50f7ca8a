// Package layout fixes the source-tree and output-tree paths the build and the
// verification harness agree on. Every path is derived from a single project
// root; nothing here is configurable.
package layout
