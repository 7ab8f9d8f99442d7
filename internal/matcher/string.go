package matcher

import (
	"fmt"
	"regexp"
	"strings"
)

// StringMatchType identifies the matching strategy of a StringMatcher.
type StringMatchType int

// String matching strategies.
const (
	// StringMatchExact matches the whole value verbatim.
	StringMatchExact StringMatchType = iota

	// StringMatchPrefix matches values starting with the pattern.
	StringMatchPrefix

	// StringMatchSuffix matches values ending with the pattern.
	StringMatchSuffix

	// StringMatchContains matches values containing the pattern.
	StringMatchContains

	// StringMatchSafeRegex matches the whole value against a compiled
	// regular expression.
	StringMatchSafeRegex
)

// String returns the tag used in diagnostic output.
func (t StringMatchType) String() string {
	switch t {
	case StringMatchExact:
		return "exact"
	case StringMatchPrefix:
		return "prefix"
	case StringMatchSuffix:
		return "suffix"
	case StringMatchContains:
		return "contains"
	case StringMatchSafeRegex:
		return "safe_regex"
	default:
		return "unknown"
	}
}

// StringMatcher matches a single string value against one configured rule.
// It is an immutable value object: copies are independent and instances
// are safe for concurrent Match calls without locking. For regex-backed
// matchers, copies share the immutable compiled program; equality still
// compares source pattern text only.
type StringMatcher struct {
	matchType     StringMatchType
	pattern       string
	re            *regexp.Regexp
	caseSensitive bool
}

// NewStringMatcher creates a string matcher. For StringMatchSafeRegex the
// pattern is compiled with case sensitivity baked into the program; a
// pattern that does not compile yields a *ValidationError. All other types
// store the pattern verbatim and never fail.
func NewStringMatcher(matchType StringMatchType, pattern string, caseSensitive bool) (StringMatcher, error) {
	m := StringMatcher{
		matchType:     matchType,
		pattern:       pattern,
		caseSensitive: caseSensitive,
	}

	if matchType == StringMatchSafeRegex {
		re, err := compileFullMatch(pattern, caseSensitive)
		if err != nil {
			return StringMatcher{}, &ValidationError{
				Reason: "invalid regex string specified in matcher",
				Err:    err,
			}
		}
		m.re = re
	}

	return m, nil
}

// compileFullMatch anchors the pattern so the entire input has to match,
// not a substring. The standard library engine executes in linear time
// with no backtracking, which the authorization path depends on.
func compileFullMatch(pattern string, caseSensitive bool) (*regexp.Regexp, error) {
	expr := `\A(?:` + pattern + `)\z`
	if !caseSensitive {
		expr = `(?i)` + expr
	}
	return regexp.Compile(expr)
}

// Match reports whether the value satisfies the configured rule.
func (m StringMatcher) Match(value string) bool {
	switch m.matchType {
	case StringMatchExact:
		if m.caseSensitive {
			return value == m.pattern
		}
		return equalFoldASCII(value, m.pattern)
	case StringMatchPrefix:
		if m.caseSensitive {
			return strings.HasPrefix(value, m.pattern)
		}
		return hasPrefixFoldASCII(value, m.pattern)
	case StringMatchSuffix:
		if m.caseSensitive {
			return strings.HasSuffix(value, m.pattern)
		}
		return hasSuffixFoldASCII(value, m.pattern)
	case StringMatchContains:
		if m.caseSensitive {
			return strings.Contains(value, m.pattern)
		}
		return strings.Contains(lowerASCII(value), lowerASCII(m.pattern))
	case StringMatchSafeRegex:
		return m.re.MatchString(value)
	default:
		return false
	}
}

// Equal reports structural equality: same type, same case-sensitivity and
// same pattern text. Two regex matchers built independently from identical
// pattern text are equal.
func (m StringMatcher) Equal(other StringMatcher) bool {
	return m.matchType == other.matchType &&
		m.caseSensitive == other.caseSensitive &&
		m.pattern == other.pattern
}

// Type returns the matching strategy.
func (m StringMatcher) Type() StringMatchType {
	return m.matchType
}

// Pattern returns the configured pattern text.
func (m StringMatcher) Pattern() string {
	return m.pattern
}

// CaseSensitive reports whether matching is case-sensitive.
func (m StringMatcher) CaseSensitive() bool {
	return m.caseSensitive
}

// String returns a diagnostic descriptor for audit and debug output. It is
// never consulted by Match.
func (m StringMatcher) String() string {
	caseNote := ""
	if !m.caseSensitive {
		caseNote = ", case_sensitive=false"
	}
	return fmt.Sprintf("StringMatcher{%s=%s%s}", m.matchType, m.pattern, caseNote)
}
