package textutil

import (
	"strings"
)

// ContainsAnyFold reports whether the lowercased string contains any of
// the given markers. Markers are expected to already be lowercase.
func ContainsAnyFold(s string, markers []string) bool {
	s = strings.ToLower(s)
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
