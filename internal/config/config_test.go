package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LUAPAM_SERVICE", "LUAPAM_USER", "LUAPAM_LOG_LEVEL", "LUAPAM_LOG_FORMAT",
		"LUAPAM_FAKE", "LUAPAM_FAKE_USERS", "LUAPAM_OTEL_ENDPOINT", "LUAPAM_OTEL_ENABLED",
	} {
		// Setenv restores the original value on cleanup.
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "login", cfg.Service)
	assert.Equal(t, "", cfg.User)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.False(t, cfg.Fake)
	assert.Empty(t, cfg.FakeUsers)
	assert.True(t, cfg.OTelEnabled)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LUAPAM_SERVICE", "sshd")
	t.Setenv("LUAPAM_USER", "alice")
	t.Setenv("LUAPAM_LOG_FORMAT", "json")
	t.Setenv("LUAPAM_FAKE", "true")
	t.Setenv("LUAPAM_FAKE_USERS", "alice:secret123,bob:hunter2")
	t.Setenv("LUAPAM_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("LUAPAM_OTEL_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sshd", cfg.Service)
	assert.Equal(t, "alice", cfg.User)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.Fake)
	assert.Equal(t, map[string]string{"alice": "secret123", "bob": "hunter2"}, cfg.FakeUsers)
	assert.Equal(t, "http://localhost:4318", cfg.OTelEndpoint)
	assert.False(t, cfg.OTelEnabled)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name, key, value, want string
	}{
		{"bad bool", "LUAPAM_FAKE", "maybe", "parse env:"},
		{"bad format", "LUAPAM_LOG_FORMAT", "xml", "LUAPAM_LOG_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
