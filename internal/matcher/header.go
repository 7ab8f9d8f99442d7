package matcher

import (
	"fmt"
	"strconv"
)

// HeaderMatchType identifies the matching strategy of a HeaderMatcher.
type HeaderMatchType int

// Header matching strategies. The first five delegate to a StringMatcher.
const (
	HeaderMatchExact HeaderMatchType = iota
	HeaderMatchPrefix
	HeaderMatchSuffix
	HeaderMatchContains
	HeaderMatchSafeRegex

	// HeaderMatchRange matches values that parse as a base-10 signed
	// integer inside a half-open range [start, end).
	HeaderMatchRange

	// HeaderMatchPresent matches on presence or absence of the value,
	// ignoring its content.
	HeaderMatchPresent
)

// String returns the tag used in diagnostic output.
func (t HeaderMatchType) String() string {
	switch t {
	case HeaderMatchRange:
		return "range"
	case HeaderMatchPresent:
		return "present"
	default:
		return t.toStringMatchType().String()
	}
}

// toStringMatchType maps a string-based header match type onto the
// equivalent StringMatchType. Only valid for the first five types.
func (t HeaderMatchType) toStringMatchType() StringMatchType {
	return StringMatchType(t)
}

// isStringType reports whether the type delegates to a StringMatcher.
func (t HeaderMatchType) isStringType() bool {
	switch t {
	case HeaderMatchExact, HeaderMatchPrefix, HeaderMatchSuffix,
		HeaderMatchContains, HeaderMatchSafeRegex:
		return true
	default:
		return false
	}
}

// HeaderMatcher matches an optional header or metadata value against one
// configured rule. Exactly one payload is active, selected by the match
// type: an embedded StringMatcher, a half-open integer range, or a
// presence flag. The invert flag negates the final result regardless of
// type. HeaderMatcher is an immutable value object, safe for concurrent
// Match calls without locking.
type HeaderMatcher struct {
	name          string
	matchType     HeaderMatchType
	stringMatcher StringMatcher
	rangeStart    int64
	rangeEnd      int64
	presentMatch  bool
	invertMatch   bool
}

// NewHeaderMatcher creates a header matcher for the named header. Only the
// payload arguments selected by matchType are consulted: pattern for the
// string-based types, rangeStart/rangeEnd for HeaderMatchRange and
// presentMatch for HeaderMatchPresent. String-based matching is always
// case-sensitive at this layer. Returns a *ValidationError for a pattern
// that does not compile or a range whose end is smaller than its start.
func NewHeaderMatcher(
	name string,
	matchType HeaderMatchType,
	pattern string,
	rangeStart, rangeEnd int64,
	presentMatch bool,
	invertMatch bool,
) (HeaderMatcher, error) {
	m := HeaderMatcher{
		name:        name,
		matchType:   matchType,
		invertMatch: invertMatch,
	}

	switch {
	case matchType.isStringType():
		sm, err := NewStringMatcher(matchType.toStringMatchType(), pattern, true)
		if err != nil {
			return HeaderMatcher{}, err
		}
		m.stringMatcher = sm
	case matchType == HeaderMatchRange:
		if rangeStart > rangeEnd {
			return HeaderMatcher{}, &ValidationError{
				Reason: "invalid range specifier: end cannot be smaller than start",
			}
		}
		m.rangeStart = rangeStart
		m.rangeEnd = rangeEnd
	case matchType == HeaderMatchPresent:
		m.presentMatch = presentMatch
	default:
		return HeaderMatcher{}, &ValidationError{
			Reason: fmt.Sprintf("unknown header match type %d", matchType),
		}
	}

	return m, nil
}

// Match reports whether the optional value satisfies the rule. A nil value
// means the header is absent. Absence is a non-match for every type except
// HeaderMatchPresent. Inversion is applied last, after absence handling:
// an inverted matcher on an absent value yields true.
func (m HeaderMatcher) Match(value *string) bool {
	var match bool
	switch {
	case m.matchType == HeaderMatchPresent:
		match = (value != nil) == m.presentMatch
	case value == nil:
		match = false
	case m.matchType == HeaderMatchRange:
		n, err := strconv.ParseInt(*value, 10, 64)
		match = err == nil && n >= m.rangeStart && n < m.rangeEnd
	default:
		match = m.stringMatcher.Match(*value)
	}
	return match != m.invertMatch
}

// Equal reports structural equality of name, type, invert flag and the
// active payload.
func (m HeaderMatcher) Equal(other HeaderMatcher) bool {
	if m.name != other.name || m.matchType != other.matchType || m.invertMatch != other.invertMatch {
		return false
	}
	switch m.matchType {
	case HeaderMatchRange:
		return m.rangeStart == other.rangeStart && m.rangeEnd == other.rangeEnd
	case HeaderMatchPresent:
		return m.presentMatch == other.presentMatch
	default:
		return m.stringMatcher.Equal(other.stringMatcher)
	}
}

// Name returns the header or metadata key the rule applies to.
func (m HeaderMatcher) Name() string {
	return m.name
}

// Type returns the matching strategy.
func (m HeaderMatcher) Type() HeaderMatchType {
	return m.matchType
}

// Inverted reports whether the result is negated.
func (m HeaderMatcher) Inverted() bool {
	return m.invertMatch
}

// String returns a diagnostic descriptor for audit and debug output. It is
// never consulted by Match.
func (m HeaderMatcher) String() string {
	invert := ""
	if m.invertMatch {
		invert = "not "
	}
	switch m.matchType {
	case HeaderMatchRange:
		return fmt.Sprintf("HeaderMatcher{%s %srange=[%d, %d]}", m.name, invert, m.rangeStart, m.rangeEnd)
	case HeaderMatchPresent:
		return fmt.Sprintf("HeaderMatcher{%s %spresent=%t}", m.name, invert, m.presentMatch)
	default:
		return fmt.Sprintf("HeaderMatcher{%s %s%s}", m.name, invert, m.stringMatcher)
	}
}
