package authz

import (
	"fmt"
	"strings"

	"github.com/vyrodovalexey/avauthz/internal/matcher"
)

// Action is the effect of a matched policy.
type Action string

// Policy effects.
const (
	ActionAllow Action = "allow"
	ActionDeny  Action = "deny"
)

// Policy is a named set of header rules with an effect. A policy matches
// a request only when every one of its header rules matches.
type Policy struct {
	// Name is the unique name of the policy.
	Name string `yaml:"name" json:"name"`

	// Description is an optional description.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Action is the effect when the policy matches (allow or deny).
	Action Action `yaml:"action" json:"action"`

	// Priority orders evaluation within an action class (higher first).
	Priority int `yaml:"priority,omitempty" json:"priority,omitempty"`

	// Headers is the list of header rules; all must match.
	Headers []HeaderRule `yaml:"headers" json:"headers"`
}

// Validate validates the policy shape without compiling its rules.
func (p *Policy) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: policy name is required", ErrInvalidPolicy)
	}
	if p.Action != ActionAllow && p.Action != ActionDeny {
		return fmt.Errorf("%w: policy %q: action must be %q or %q, got %q",
			ErrInvalidPolicy, p.Name, ActionAllow, ActionDeny, p.Action)
	}
	if len(p.Headers) == 0 {
		return fmt.Errorf("%w: policy %q has no header rules", ErrInvalidPolicy, p.Name)
	}
	for i := range p.Headers {
		if err := p.Headers[i].Validate(); err != nil {
			return fmt.Errorf("policy %q: %w", p.Name, err)
		}
	}
	return nil
}

// compiledPolicy is a policy with its header matchers built.
type compiledPolicy struct {
	policy   Policy
	matchers []matcher.HeaderMatcher
}

// compilePolicy validates the policy and builds its matchers. A single
// invalid rule rejects the whole policy.
func compilePolicy(p Policy) (*compiledPolicy, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	cp := &compiledPolicy{
		policy:   p,
		matchers: make([]matcher.HeaderMatcher, 0, len(p.Headers)),
	}
	for i := range p.Headers {
		m, err := p.Headers[i].Compile()
		if err != nil {
			return nil, fmt.Errorf("policy %q: %w", p.Name, err)
		}
		cp.matchers = append(cp.matchers, m)
	}
	return cp, nil
}

// matches reports whether every header matcher accepts the value supplied
// by the request.
func (cp *compiledPolicy) matches(req *Request) bool {
	for i := range cp.matchers {
		if !cp.matchers[i].Match(req.headerValue(cp.matchers[i].Name())) {
			return false
		}
	}
	return true
}

// Request is one authorization request. Header keys are lower-cased;
// build instances through NewRequest or the transport adapters.
type Request struct {
	// Headers holds one value per header key. A key present with an
	// empty value is a present header; an absent key is an absent header.
	Headers map[string]string
}

// NewRequest builds a request, normalizing header keys to lower case.
// Header names are matched case-insensitively, values are not.
func NewRequest(headers map[string]string) *Request {
	normalized := make(map[string]string, len(headers))
	for k, v := range headers {
		normalized[strings.ToLower(k)] = v
	}
	return &Request{Headers: normalized}
}

// headerValue returns the value for name, nil when the header is absent.
func (r *Request) headerValue(name string) *string {
	if r == nil || len(r.Headers) == 0 {
		return nil
	}
	if v, ok := r.Headers[strings.ToLower(name)]; ok {
		return &v
	}
	return nil
}

// Decision is the result of an authorization evaluation.
type Decision struct {
	// Allowed indicates if the request is allowed.
	Allowed bool `json:"allowed"`

	// Policy is the name of the policy that made the decision, empty
	// when the default action applied.
	Policy string `json:"policy,omitempty"`

	// Reason is a human-readable reason for the decision.
	Reason string `json:"reason"`
}
