// Package signal implements emission/source pattern matching for
// signal-shaped native callbacks.
//
// Emissions are comma-separated segment lists such as "mouse,clicked,1".
// Patterns use the same separator and two wildcards:
//
//	"*"   matches exactly one segment ("mouse,clicked,*")
//	"**"  matches zero or more segments ("mouse,**")
//
// A pattern that is exactly "*" matches every string, including the empty
// one, so callbacks registered with ("*", "*") see all signals.
package signal

import "strings"

const (
	// WildcardSingle matches exactly one segment.
	WildcardSingle = "*"

	// WildcardMulti matches zero or more segments.
	WildcardMulti = "**"

	// Separator separates segments.
	Separator = ","
)

// Pattern is an emission or source pattern.
type Pattern string

// String returns the pattern as a string.
func (p Pattern) String() string {
	return string(p)
}

// IsWildcard reports whether the pattern contains a wildcard segment.
func (p Pattern) IsWildcard() bool {
	for _, seg := range split(string(p)) {
		if seg == WildcardSingle || seg == WildcardMulti {
			return true
		}
	}
	return false
}

// Match reports whether s matches the pattern.
func (p Pattern) Match(s string) bool {
	if p == WildcardSingle || p == WildcardMulti {
		return true
	}
	return matchSegments(split(s), split(string(p)))
}

// Matches reports whether both the emission and source patterns accept the
// given signal.
func Matches(emissionPattern, sourcePattern Pattern, emission, source string) bool {
	return emissionPattern.Match(emission) && sourcePattern.Match(source)
}

func split(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, Separator)
}

func matchSegments(segs, pattern []string) bool {
	si, pi := 0, 0

	for pi < len(pattern) {
		if pattern[pi] == WildcardMulti {
			for si <= len(segs) {
				if matchSegments(segs[si:], pattern[pi+1:]) {
					return true
				}
				si++
			}
			return false
		}

		if si >= len(segs) {
			return false
		}

		if pattern[pi] != WildcardSingle && pattern[pi] != segs[si] {
			return false
		}
		si++
		pi++
	}

	return si == len(segs)
}
