// Package variant defines the two platform variants a build produces from the
// shared source tree.
package variant

import "fmt"

// Platform is one of the two supported output targets.
type Platform string

const (
	Desktop Platform = "desktop"
	Mobile  Platform = "mobile"
)

// All returns both platforms in build order.
func All() []Platform {
	return []Platform{Desktop, Mobile}
}

// Parse converts a tag into a Platform.
func Parse(tag string) (Platform, error) {
	switch Platform(tag) {
	case Desktop, Mobile:
		return Platform(tag), nil
	default:
		return "", fmt.Errorf("unknown platform %q: supported platforms are %q and %q", tag, Desktop, Mobile)
	}
}

// Opposite returns the other platform.
func (p Platform) Opposite() Platform {
	if p == Desktop {
		return Mobile
	}
	return Desktop
}

// OutputDir returns the subdirectory name under the output root ("d" or "m").
func (p Platform) OutputDir() string {
	if p == Desktop {
		return "d"
	}
	return "m"
}

// SourceDir returns the name of the platform's markup shell directory under
// apps/ (e.g., "web-desktop").
func (p Platform) SourceDir() string {
	return "web-" + string(p)
}

// URLPrefix returns the site path the variant is served from (e.g., "/d/").
func (p Platform) URLPrefix() string {
	return "/" + p.OutputDir() + "/"
}

func (p Platform) String() string { return string(p) }
