package access

import "strings"

// Outcome of a page guard check. Redirect is empty when Allow is true.
type Outcome struct {
	Allow    bool
	Redirect string
}

var protectedPrefixes = []string{"/dashboard", "/trades", "/settings"}

// IsProtected reports whether path lives in the subscriber area.
func IsProtected(path string) bool {
	for _, p := range protectedPrefixes {
		if hasPathPrefix(path, p) {
			return true
		}
	}
	return false
}

// Resolve applies the route rules: never-subscribed users go to the
// subscribe page, limited users are confined to billing settings, full
// access passes through.
func Resolve(path string, d Decision) Outcome {
	if !IsProtected(path) {
		return Outcome{Allow: true}
	}

	switch d.Access {
	case LevelFull:
		return Outcome{Allow: true}
	case LevelLimited:
		if hasPathPrefix(path, string(RouteBilling)) {
			return Outcome{Allow: true}
		}
		return Outcome{Redirect: string(RouteBilling)}
	default:
		return Outcome{Redirect: string(RouteSubscribe)}
	}
}

func hasPathPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}
