// Package matcher provides the string and header matching primitives used
// on the authorization decision path.
//
// A StringMatcher decides whether a string value satisfies one configured
// rule (exact, prefix, suffix, contains or safe regex). A HeaderMatcher
// matches an optional header or metadata value and adds half-open integer
// ranges, presence checks and result inversion on top of the string rules.
//
// Both types are immutable value objects constructed through validating
// factories. Match never fails at runtime: an absent value for a
// non-presence rule, or a non-numeric value for a range rule, is a
// non-match. Malformed runtime input therefore can never force a match it
// should not have.
//
// Safe regex rules match the full input, not a substring, and run on the
// standard library engine, which guarantees linear-time execution with no
// backtracking.
package matcher
