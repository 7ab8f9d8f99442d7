package authz

import (
	"fmt"

	"github.com/vyrodovalexey/avauthz/internal/matcher"
)

// MatchKind names a header matching strategy in policy configuration.
type MatchKind string

// Supported header matching strategies.
const (
	MatchExact    MatchKind = "exact"
	MatchPrefix   MatchKind = "prefix"
	MatchSuffix   MatchKind = "suffix"
	MatchContains MatchKind = "contains"
	MatchRegex    MatchKind = "regex"
	MatchRange    MatchKind = "range"
	MatchPresent  MatchKind = "present"
)

// headerMatchTypes maps configuration kinds onto matcher types.
var headerMatchTypes = map[MatchKind]matcher.HeaderMatchType{
	MatchExact:    matcher.HeaderMatchExact,
	MatchPrefix:   matcher.HeaderMatchPrefix,
	MatchSuffix:   matcher.HeaderMatchSuffix,
	MatchContains: matcher.HeaderMatchContains,
	MatchRegex:    matcher.HeaderMatchSafeRegex,
	MatchRange:    matcher.HeaderMatchRange,
	MatchPresent:  matcher.HeaderMatchPresent,
}

// HeaderRule is the configuration for a single header matcher.
type HeaderRule struct {
	// Header is the header or metadata key the rule applies to.
	Header string `yaml:"header" json:"header"`

	// Match selects the matching strategy.
	Match MatchKind `yaml:"match" json:"match"`

	// Value is the literal or pattern for string-based strategies.
	Value string `yaml:"value,omitempty" json:"value,omitempty"`

	// RangeStart is the inclusive lower bound for the range strategy.
	RangeStart int64 `yaml:"rangeStart,omitempty" json:"rangeStart,omitempty"`

	// RangeEnd is the exclusive upper bound for the range strategy.
	RangeEnd int64 `yaml:"rangeEnd,omitempty" json:"rangeEnd,omitempty"`

	// Present is the expected presence for the present strategy.
	Present bool `yaml:"present,omitempty" json:"present,omitempty"`

	// Invert negates the rule result.
	Invert bool `yaml:"invert,omitempty" json:"invert,omitempty"`
}

// Validate validates the rule shape without compiling it.
func (r *HeaderRule) Validate() error {
	if r.Header == "" {
		return fmt.Errorf("%w: header rule is missing a header name", ErrInvalidPolicy)
	}
	if _, ok := headerMatchTypes[r.Match]; !ok {
		return fmt.Errorf("%w: header %q: unknown match kind %q", ErrInvalidPolicy, r.Header, r.Match)
	}
	return nil
}

// Compile builds the header matcher described by the rule. Pattern and
// range validation happens here, inside the matcher factory.
func (r *HeaderRule) Compile() (matcher.HeaderMatcher, error) {
	if err := r.Validate(); err != nil {
		return matcher.HeaderMatcher{}, err
	}
	m, err := matcher.NewHeaderMatcher(r.Header, headerMatchTypes[r.Match],
		r.Value, r.RangeStart, r.RangeEnd, r.Present, r.Invert)
	if err != nil {
		return matcher.HeaderMatcher{}, fmt.Errorf("%w: header %q: %w", ErrInvalidPolicy, r.Header, err)
	}
	return m, nil
}
