package authz

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the authorization configuration.
type Config struct {
	// Enabled enables authorization enforcement. When disabled the
	// middleware and interceptors pass every request through.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// DefaultAction applies when no policy matches (allow or deny).
	// Empty means deny.
	DefaultAction Action `yaml:"defaultAction,omitempty" json:"defaultAction,omitempty"`

	// Policies is the list of authorization policies.
	Policies []Policy `yaml:"policies,omitempty" json:"policies,omitempty"`

	// SkipPaths is a list of paths to skip authorization. A trailing
	// '*' matches any suffix.
	SkipPaths []string `yaml:"skipPaths,omitempty" json:"skipPaths,omitempty"`
}

// DefaultConfig returns a default authorization configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		DefaultAction: ActionDeny,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}

	if c.DefaultAction != "" && c.DefaultAction != ActionAllow && c.DefaultAction != ActionDeny {
		return fmt.Errorf("%w: defaultAction must be %q or %q, got %q",
			ErrInvalidConfig, ActionAllow, ActionDeny, c.DefaultAction)
	}

	seen := make(map[string]bool, len(c.Policies))
	for i := range c.Policies {
		if err := c.Policies[i].Validate(); err != nil {
			return err
		}
		if seen[c.Policies[i].Name] {
			return fmt.Errorf("%w: duplicate policy name %q", ErrInvalidConfig, c.Policies[i].Name)
		}
		seen[c.Policies[i].Name] = true
	}

	return nil
}

// EffectiveDefaultAction returns the default action, deny when unset.
// Unset falls closed: a missing default must not widen access.
func (c *Config) EffectiveDefaultAction() Action {
	if c != nil && c.DefaultAction == ActionAllow {
		return ActionAllow
	}
	return ActionDeny
}

// ShouldSkipPath checks if authorization should be skipped for a path.
func (c *Config) ShouldSkipPath(path string) bool {
	if c == nil {
		return false
	}
	for _, skipPath := range c.SkipPaths {
		if matchPath(skipPath, path) {
			return true
		}
	}
	return false
}

// matchPath checks if a path matches a pattern.
func matchPath(pattern, path string) bool {
	if pattern == path {
		return true
	}
	if pattern != "" && pattern[len(pattern)-1] == '*' {
		prefix := pattern[:len(pattern)-1]
		return len(path) >= len(prefix) && path[:len(prefix)] == prefix
	}
	return false
}

// LoadConfig reads, parses and validates a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
