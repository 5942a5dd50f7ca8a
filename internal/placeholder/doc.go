// Package placeholder resolves the textual placeholders in the shared script
// and the service worker for one platform variant.
//
// Every substitution splices its value in as an opaque literal. Nothing here
// goes through regexp.ReplaceAllString, whose replacement argument expands
// $1 and ${name} templates; payloads such as the changelog routinely contain
// dollar signs.
//
// Resolution must happen before minification: the minifier may rename the
// constants these patterns look for.
package placeholder
