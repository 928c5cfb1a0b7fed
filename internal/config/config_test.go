package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaults(t *testing.T) {
	cfg := New()

	assert.Equal(t, "https://localhost:6443", cfg.BaseURL)
	assert.Equal(t, "", cfg.SpecPath)
	assert.Equal(t, 10*time.Second, cfg.APICallTimeout)
	assert.False(t, cfg.Debug)
}

func TestNewFromEnvironment(t *testing.T) {
	t.Setenv("KUBE_BASE_URL", "https://cluster.example:8443")
	t.Setenv("KUBE_SPEC_PATH", "/etc/kube/swagger.json")
	t.Setenv("KUBE_API_CALL_TIMEOUT", "30s")
	t.Setenv("DEBUG_ENABLED", "true")

	cfg := New()

	assert.Equal(t, "https://cluster.example:8443", cfg.BaseURL)
	assert.Equal(t, "/etc/kube/swagger.json", cfg.SpecPath)
	assert.Equal(t, 30*time.Second, cfg.APICallTimeout)
	assert.True(t, cfg.Debug)
}

func TestUnparseableValuesFallBack(t *testing.T) {
	t.Setenv("KUBE_API_CALL_TIMEOUT", "soon")
	t.Setenv("DEBUG_ENABLED", "yes please")

	cfg := New()

	assert.Equal(t, 10*time.Second, cfg.APICallTimeout)
	assert.False(t, cfg.Debug)
}
