// Package minify adapts esbuild's transform API to the build pipeline.
// Stylesheets and scripts are minified one file at a time; legal comments
// (/*! ... */, //! ..., @license, @preserve) survive verbatim.
package minify
