package authz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policies.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		path := writeConfigFile(t, `
enabled: true
defaultAction: deny
skipPaths:
  - /healthz
  - /metrics
policies:
  - name: allow-admins
    action: allow
    priority: 10
    headers:
      - header: x-role
        match: exact
        value: admin
  - name: allow-adults
    action: allow
    headers:
      - header: age
        match: range
        rangeStart: 18
        rangeEnd: 65
  - name: block-anonymous
    action: deny
    headers:
      - header: authorization
        match: present
        present: true
        invert: true
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.True(t, cfg.Enabled)
		assert.Equal(t, ActionDeny, cfg.EffectiveDefaultAction())
		assert.Len(t, cfg.Policies, 3)
		assert.Equal(t, int64(65), cfg.Policies[1].Headers[0].RangeEnd)
		assert.True(t, cfg.Policies[2].Headers[0].Invert)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()
		path := writeConfigFile(t, "policies: [:::")
		_, err := LoadConfig(path)
		require.Error(t, err)
	})

	t.Run("invalid policy rejects whole file", func(t *testing.T) {
		t.Parallel()
		path := writeConfigFile(t, `
enabled: true
policies:
  - name: bad
    action: allow
    headers:
      - header: x
        match: glob
        value: "*"
`)
		_, err := LoadConfig(path)
		require.Error(t, err)
		assert.True(t, IsInvalidPolicy(err))
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	t.Run("nil config is valid", func(t *testing.T) {
		t.Parallel()
		var cfg *Config
		assert.NoError(t, cfg.Validate())
	})

	t.Run("invalid default action", func(t *testing.T) {
		t.Parallel()
		cfg := &Config{DefaultAction: "audit"}
		assert.Error(t, cfg.Validate())
	})

	t.Run("duplicate policy names", func(t *testing.T) {
		t.Parallel()
		rule := []HeaderRule{{Header: "x", Match: MatchExact, Value: "v"}}
		cfg := &Config{
			Policies: []Policy{
				{Name: "p", Action: ActionAllow, Headers: rule},
				{Name: "p", Action: ActionDeny, Headers: rule},
			},
		}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate")
	})
}

func TestConfig_ShouldSkipPath(t *testing.T) {
	t.Parallel()

	cfg := &Config{SkipPaths: []string{"/healthz", "/internal/*"}}

	assert.True(t, cfg.ShouldSkipPath("/healthz"))
	assert.True(t, cfg.ShouldSkipPath("/internal/debug"))
	assert.True(t, cfg.ShouldSkipPath("/internal/"))
	assert.False(t, cfg.ShouldSkipPath("/healthz/live"))
	assert.False(t, cfg.ShouldSkipPath("/api"))

	var nilCfg *Config
	assert.False(t, nilCfg.ShouldSkipPath("/healthz"))
}

func TestConfig_EffectiveDefaultAction(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ActionDeny, (&Config{}).EffectiveDefaultAction())
	assert.Equal(t, ActionDeny, (&Config{DefaultAction: ActionDeny}).EffectiveDefaultAction())
	assert.Equal(t, ActionAllow, (&Config{DefaultAction: ActionAllow}).EffectiveDefaultAction())

	var nilCfg *Config
	assert.Equal(t, ActionDeny, nilCfg.EffectiveDefaultAction())
}
