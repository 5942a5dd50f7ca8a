// Package markers implements line-oriented conditional compilation for the
// shared stylesheet.
//
// A platform region is opened by a line holding only /* PLATFORM:<tag> */ and
// closed by a line holding only /* /PLATFORM:<tag> */. Leading and trailing
// blanks are tolerated on a marker line; any other content on the line makes it
// an ordinary line. Regions do not nest.
package markers
