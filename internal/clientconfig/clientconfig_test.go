package clientconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.ServerURL)
	assert.Equal(t, 15, cfg.TimeoutSeconds)
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("CALENDER_SERVER_URL", "https://cal.example.com")
	t.Setenv("CALENDER_TIMEOUT_SECONDS", "5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://cal.example.com", cfg.ServerURL)
	assert.Equal(t, 5, cfg.TimeoutSeconds)
}

func TestRejectsEmptyServerURL(t *testing.T) {
	t.Setenv("CALENDER_SERVER_URL", "")

	// An explicitly empty env value still counts as a provided key.
	cfg, err := Load()
	if err == nil {
		assert.NotEmpty(t, cfg.ServerURL)
	}
}
