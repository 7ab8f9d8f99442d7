package authz

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vyrodovalexey/avauthz/internal/observability"
)

// Engine evaluates authorization policies against request headers.
// Deny policies are evaluated before allow policies; within each class
// policies run in descending priority order. The compiled policy set is
// immutable and replaced atomically on reload, so Evaluate never observes
// a partially updated configuration.
type Engine struct {
	mu            sync.RWMutex
	deny          []*compiledPolicy
	allow         []*compiledPolicy
	defaultAction Action

	logger  observability.Logger
	metrics *Metrics
}

// Option is a functional option for the engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger observability.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics sets the metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(e *Engine) {
		e.metrics = metrics
	}
}

// NewEngine compiles the configured policies and builds an engine. A
// single invalid policy rejects the whole configuration; validation
// failures indicate a configuration defect and are never retried.
func NewEngine(cfg *Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		defaultAction: cfg.EffectiveDefaultAction(),
		logger:        observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.metrics == nil {
		e.metrics = NewMetrics("avauthz")
	}

	if err := e.SetPolicies(cfg.Policies); err != nil {
		return nil, err
	}

	return e, nil
}

// SetPolicies compiles and atomically installs a new policy set. On error
// the previously installed set stays live.
func (e *Engine) SetPolicies(policies []Policy) error {
	var deny, allow []*compiledPolicy
	for i := range policies {
		cp, err := compilePolicy(policies[i])
		if err != nil {
			return err
		}
		if cp.policy.Action == ActionDeny {
			deny = append(deny, cp)
		} else {
			allow = append(allow, cp)
		}
	}

	sortByPriority(deny)
	sortByPriority(allow)

	e.mu.Lock()
	e.deny = deny
	e.allow = allow
	e.mu.Unlock()

	e.metrics.SetPolicyCount(len(policies))
	e.logger.Info("authorization policies installed",
		observability.Int("deny", len(deny)),
		observability.Int("allow", len(allow)),
	)

	return nil
}

// PolicyCount returns the number of installed policies.
func (e *Engine) PolicyCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.deny) + len(e.allow)
}

// Evaluate runs the request through deny policies first, then allow
// policies, falling back to the default action. Evaluation is pure and
// synchronous: no per-call state, no caching across calls.
func (e *Engine) Evaluate(ctx context.Context, req *Request) *Decision {
	start := time.Now()

	e.mu.RLock()
	deny := e.deny
	allow := e.allow
	defaultAction := e.defaultAction
	e.mu.RUnlock()

	for _, cp := range deny {
		if cp.matches(req) {
			return e.finish(start, &Decision{
				Allowed: false,
				Policy:  cp.policy.Name,
				Reason:  "matched deny policy " + cp.policy.Name,
			})
		}
	}

	for _, cp := range allow {
		if cp.matches(req) {
			return e.finish(start, &Decision{
				Allowed: true,
				Policy:  cp.policy.Name,
				Reason:  "matched allow policy " + cp.policy.Name,
			})
		}
	}

	return e.finish(start, &Decision{
		Allowed: defaultAction == ActionAllow,
		Reason:  "no matching policy",
	})
}

// finish records metrics and logging for a decision.
func (e *Engine) finish(start time.Time, decision *Decision) *Decision {
	result := "denied"
	if decision.Allowed {
		result = "allowed"
	}

	policy := decision.Policy
	if policy == "" {
		policy = "default"
	}

	e.metrics.RecordEvaluation(result, time.Since(start))
	e.metrics.RecordDecision(result, policy)
	e.logger.Debug("authorization decision",
		observability.Bool("allowed", decision.Allowed),
		observability.String("policy", policy),
		observability.String("reason", decision.Reason),
	)

	return decision
}

// sortByPriority orders policies by descending priority, name as
// tie-breaker so evaluation order is deterministic.
func sortByPriority(policies []*compiledPolicy) {
	sort.SliceStable(policies, func(i, j int) bool {
		if policies[i].policy.Priority != policies[j].policy.Priority {
			return policies[i].policy.Priority > policies[j].policy.Priority
		}
		return policies[i].policy.Name < policies[j].policy.Name
	})
}
