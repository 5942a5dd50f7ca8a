// Package inline merges a variant's standalone style.css and app.js back into
// its index.html and deletes the standalone files.
//
// The embedding tag line is located with a regular expression, but the
// replacement is spliced in by index. Minified scripts legitimately contain
// "$&", "$1" or "${name}", which regexp.ReplaceAllString would expand.
package inline
