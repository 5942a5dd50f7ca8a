// Package verify re-opens a finished build and checks the invariants the
// build promises: both documents exist and are self-contained, nothing from
// the other platform leaked in, every placeholder was resolved, no text was
// corrupted by replacement, version strings agree, and routing is correct.
//
// Checks are independent. A failing or panicking check is reported and the
// rest still run.
package verify
