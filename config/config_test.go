package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/matchpoint?sslmode=disable")
	t.Setenv("JWT_SECRET_KEY", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "")
	t.Setenv("SCORE_SYNC_DEBOUNCE_MS", "")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 600*time.Millisecond, cfg.ScoreSyncDebounce)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET_KEY", "secret")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/db")
	t.Setenv("JWT_SECRET_KEY", "")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET_KEY")
}

func TestLoadRejectsBadPort(t *testing.T) {
	setRequiredEnv(t)

	for _, port := range []string{"abc", "0", "-1", "70000"} {
		t.Setenv("SERVER_PORT", port)
		_, err := Load()
		assert.Error(t, err, "port %q", port)
	}
}

func TestLoadCustomDebounce(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SCORE_SYNC_DEBOUNCE_MS", "250")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.ScoreSyncDebounce)
}

func TestLoadRejectsBadDebounce(t *testing.T) {
	setRequiredEnv(t)

	for _, value := range []string{"abc", "0", "-5"} {
		t.Setenv("SCORE_SYNC_DEBOUNCE_MS", value)
		_, err := Load()
		assert.Error(t, err, "debounce %q", value)
	}
}
