package authz

import "errors"

// Common authorization errors.
var (
	// ErrAccessDenied indicates that access was denied.
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidPolicy indicates that a policy configuration is invalid.
	ErrInvalidPolicy = errors.New("invalid policy")

	// ErrInvalidConfig indicates that the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// IsInvalidPolicy checks if an error is a policy validation error.
func IsInvalidPolicy(err error) bool {
	return errors.Is(err, ErrInvalidPolicy)
}
