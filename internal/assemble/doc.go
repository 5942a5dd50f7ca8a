// Package assemble drives the build: it turns the shared sources and the two
// markup shells into one self-contained document per platform variant under
// apps/web-root, plus the cross-variant routing files.
package assemble
