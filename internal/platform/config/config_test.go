package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp aísla el test de cualquier .env del repo.
func chdirTemp(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	originalWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(originalWD) })
	return dir
}

func TestLoad(t *testing.T) {
	t.Run("uses defaults", func(t *testing.T) {
		chdirTemp(t)
		t.Setenv("PETCTL_HOME", "/tmp/petctl")

		cfg := Load()

		assert.Equal(t, "development", cfg.Env)
		assert.Equal(t, DefaultPort, cfg.Port)
		assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
		assert.Equal(t, DefaultFrontendURL, cfg.FrontendURL)
		assert.Equal(t, DefaultScanRefreshInterval, cfg.ScanRefreshInterval)
		assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
		assert.Equal(t, DefaultIdleTimeout, cfg.IdleTimeout)
		assert.Empty(t, cfg.Warnings)
		assert.Equal(t, "/tmp/petctl", cfg.PetctlHome)
		assert.False(t, cfg.IsProduction())
	})

	t.Run("reads .env file", func(t *testing.T) {
		dir := chdirTemp(t)
		require.NoError(t, os.WriteFile(dir+"/.env", []byte("FRONTEND_URL=https://tags.example.com/\nSCAN_REFRESH_INTERVAL=30s\n"), 0o644))
		t.Cleanup(func() {
			_ = os.Unsetenv("FRONTEND_URL")
			_ = os.Unsetenv("SCAN_REFRESH_INTERVAL")
		})

		cfg := Load()

		assert.Equal(t, "https://tags.example.com", cfg.FrontendURL)
		assert.Equal(t, 30*time.Second, cfg.ScanRefreshInterval)
	})

	t.Run("environment overrides .env", func(t *testing.T) {
		dir := chdirTemp(t)
		require.NoError(t, os.WriteFile(dir+"/.env", []byte("PORT=3000\n"), 0o644))
		t.Setenv("PORT", "9090")
		t.Setenv("API_BASE_URL", "https://api.example.com/api/")

		cfg := Load()

		assert.Equal(t, "9090", cfg.Port)
		assert.Equal(t, "https://api.example.com/api", cfg.APIBaseURL)
	})
}

func Test_getEnvAsDuration(t *testing.T) {
	var warn warnings

	t.Setenv("TEST_DURATION_PLAIN", "20")
	assert.Equal(t, 20*time.Second, getEnvAsDuration(&warn, "TEST_DURATION_PLAIN", time.Second))

	t.Setenv("TEST_DURATION_GO", "2m")
	assert.Equal(t, 2*time.Minute, getEnvAsDuration(&warn, "TEST_DURATION_GO", time.Second))
	assert.Empty(t, warn)

	t.Setenv("TEST_DURATION_BAD", "soon")
	assert.Equal(t, time.Second, getEnvAsDuration(&warn, "TEST_DURATION_BAD", time.Second))
	assert.Equal(t, []string{"invalid value for TEST_DURATION_BAD, using default 1s"}, []string(warn))
}

func TestLoad_InvalidValuesAreReportedNotPrinted(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PETCTL_HOME", "/tmp/petctl")
	t.Setenv("SCAN_REFRESH_INTERVAL", "-5")
	t.Setenv("IDLE_TIMEOUT", "forever")

	cfg := Load()

	assert.Equal(t, DefaultScanRefreshInterval, cfg.ScanRefreshInterval)
	assert.Equal(t, DefaultIdleTimeout, cfg.IdleTimeout)
	assert.Equal(t, []string{
		"invalid value for SCAN_REFRESH_INTERVAL, using default 15s",
		"invalid value for IDLE_TIMEOUT, using default 30m0s",
	}, cfg.Warnings)
}
